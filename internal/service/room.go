package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rebertiger/student-chat/internal/models"
)

// OnlineCounter reports how many live connections are subscribed to a room.
// The websocket hub satisfies it.
type OnlineCounter interface {
	Online(roomID uint) int
}

// RoomService owns the room directory: listing, creation, membership.
type RoomService struct {
	db     *gorm.DB
	online OnlineCounter
}

func NewRoomService(db *gorm.DB, online OnlineCounter) *RoomService {
	return &RoomService{db: db, online: online}
}

type RoomDTO struct {
	ID          uint      `json:"room_id"`
	Name        string    `json:"room_name"`
	SubjectID   *uint     `json:"subject_id"`
	SubjectName *string   `json:"subject_name"`
	IsPublic    bool      `json:"is_public"`
	CreatedBy   uint      `json:"created_by"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
	Online      int       `json:"online"`
}

type ParticipantDTO struct {
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
}

type RoomDetailDTO struct {
	RoomDTO
	Participants []ParticipantDTO `json:"participants"`
}

func (s *RoomService) toDTO(r models.Room) RoomDTO {
	dto := RoomDTO{
		ID:        r.ID,
		Name:      r.Name,
		SubjectID: r.SubjectID,
		IsPublic:  r.IsPublic,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		Online:    s.online.Online(r.ID),
	}
	if r.Subject != nil {
		dto.SubjectName = &r.Subject.Name
	}
	if r.Creator != nil {
		dto.CreatorName = r.Creator.FullName
	}
	return dto
}

// ListPublic returns public rooms newest-first with subject and creator
// names resolved.
func (s *RoomService) ListPublic(limit int) ([]RoomDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var rooms []models.Room
	err := s.db.Preload("Subject").Preload("Creator").
		Where("is_public = ?", true).
		Order("created_at DESC").Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	out := make([]RoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, s.toDTO(r))
	}
	return out, nil
}

// Create inserts the room and its creator's membership in one transaction,
// so no read can ever observe a room without its creator as participant.
func (s *RoomService) Create(name string, subjectID *uint, isPublic bool, creatorID uint) (*RoomDTO, error) {
	if subjectID != nil {
		var count int64
		if err := s.db.Model(&models.Subject{}).Where("id = ?", *subjectID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrInvalidSubject
		}
	}
	room := models.Room{Name: name, SubjectID: subjectID, IsPublic: isPublic, CreatedBy: creatorID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrInvalidSubject
			}
			return err
		}
		return tx.Create(&models.RoomParticipant{RoomID: room.ID, UserID: creatorID}).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Subject").Preload("Creator").First(&room, room.ID).Error; err != nil {
		return nil, err
	}
	dto := s.toDTO(room)
	return &dto, nil
}

// Get returns one room with its participant list.
func (s *RoomService) Get(roomID uint) (*RoomDetailDTO, error) {
	var room models.Room
	if err := s.db.Preload("Subject").Preload("Creator").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	var participants []ParticipantDTO
	err := s.db.Model(&models.RoomParticipant{}).
		Select("room_participants.user_id, users.full_name").
		Joins("JOIN users ON users.id = room_participants.user_id").
		Where("room_participants.room_id = ?", roomID).
		Scan(&participants).Error
	if err != nil {
		return nil, err
	}
	return &RoomDetailDTO{RoomDTO: s.toDTO(room), Participants: participants}, nil
}

// Join adds the caller to a public room. Re-joining is a no-op reported as
// alreadyJoined; the unique index backstops concurrent joins.
func (s *RoomService) Join(roomID, userID uint) (alreadyJoined bool, err error) {
	var room models.Room
	if err := s.db.Where("id = ? AND is_public = ?", roomID, true).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrRoomNotJoinable
		}
		return false, err
	}
	var count int64
	if err := s.db.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	err = s.db.Create(&models.RoomParticipant{RoomID: roomID, UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return false, err
}

// Delete removes a room; only its creator may do so. Messages and
// participations cascade.
func (s *RoomService) Delete(roomID, userID uint) error {
	var room models.Room
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if room.CreatedBy != userID {
		return ErrNotRoomCreator
	}
	return s.db.Delete(&room).Error
}

// IsParticipant reports room membership; used before exposing history and
// before accepting relayed messages.
func (s *RoomService) IsParticipant(roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// Exists checks that a room id resolves.
func (s *RoomService) Exists(roomID uint) error {
	var room models.Room
	if err := s.db.Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}
