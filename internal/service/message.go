package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rebertiger/student-chat/internal/models"
	"github.com/rebertiger/student-chat/internal/upload"
)

// MessageService owns message history, creation and reporting.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

type MessageDTO struct {
	ID             uint      `json:"message_id"`
	RoomID         uint      `json:"room_id"`
	SenderID       uint      `json:"sender_id"`
	SenderFullName string    `json:"sender_full_name"`
	Type           string    `json:"message_type"`
	Text           *string   `json:"message_text"`
	FileURL        *string   `json:"file_url"`
	SentAt         time.Time `json:"sent_at"`
	Edited         bool      `json:"edited"`
}

// ValidateContent enforces the payload rule shared by the REST handler and
// the relay: text messages need text, everything else needs a file URL.
func ValidateContent(msgType string, text, fileURL *string) error {
	switch msgType {
	case models.MessageTypeText:
		if text == nil || *text == "" {
			return ErrInvalidMessage
		}
	case models.MessageTypeImage, models.MessageTypePDF, models.MessageTypeFile:
		if fileURL == nil || *fileURL == "" {
			return ErrInvalidMessage
		}
	default:
		return ErrInvalidMessage
	}
	return nil
}

// maxHistoryLimit caps one history page. A request without an explicit
// limit gets the whole cap, so a plain GET returns the full history of any
// room that fits in it.
const maxHistoryLimit = 500

func historyLimit(requested int) int {
	if requested <= 0 || requested > maxHistoryLimit {
		return maxHistoryLimit
	}
	return requested
}

// ListByRoom returns room history ascending by id, paginated with
// limit/before_id. Callers are expected to have checked participation.
func (s *MessageService) ListByRoom(roomID uint, limit int, beforeID uint) ([]MessageDTO, error) {
	limit = historyLimit(limit)
	q := s.db.Where("room_id = ?", roomID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []models.Message
	if err := q.Order("id desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	// newest page, oldest first
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	names, err := s.resolveSenderNames(msgs)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m, names[m.SenderID]))
	}
	return out, nil
}

// Count returns the total number of messages in a room.
func (s *MessageService) Count(roomID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}

// Create validates and persists one message, then returns it with the
// sender's full name resolved. SentAt is assigned by the server.
func (s *MessageService) Create(roomID, senderID uint, msgType string, text, fileURL *string) (*MessageDTO, error) {
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if err := ValidateContent(msgType, text, fileURL); err != nil {
		return nil, err
	}
	if msgType == models.MessageTypeText {
		fileURL = nil
	}
	msg := models.Message{RoomID: roomID, SenderID: senderID, Type: msgType, Text: text, FileURL: fileURL}
	if err := s.db.Create(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	var sender models.User
	if err := s.db.Select("id", "full_name").First(&sender, senderID).Error; err != nil {
		return nil, err
	}
	dto := toMessageDTO(msg, sender.FullName)
	return &dto, nil
}

// CreateFromUpload turns a stored file descriptor into a message row; the
// original filename travels as the message text.
func (s *MessageService) CreateFromUpload(roomID, senderID uint, d *upload.Descriptor) (*MessageDTO, error) {
	name := d.OriginalName
	return s.Create(roomID, senderID, d.MessageType, &name, &d.URL)
}

// Report files a moderation report against an existing message.
func (s *MessageService) Report(messageID uint, reportedBy *uint, reason *string) (*models.Report, error) {
	var count int64
	if err := s.db.Model(&models.Message{}).Where("id = ?", messageID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrMessageNotFound
	}
	report := models.Report{MessageID: messageID, ReportedBy: reportedBy, Reason: reason}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

type ReportDTO struct {
	ID               uint      `json:"report_id"`
	MessageID        uint      `json:"message_id"`
	ReportedBy       *uint     `json:"reported_by"`
	Reason           *string   `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
	MessageText      *string   `json:"message_text"`
	MessageType      *string   `json:"message_type"`
	FileURL          *string   `json:"file_url"`
	RoomID           *uint     `json:"room_id"`
	SenderID         *uint     `json:"sender_id"`
	ReporterFullName *string   `json:"reporter_full_name"`
	ReporterEmail    *string   `json:"reporter_email"`
}

// ListReports returns every report newest-first, joined with the reported
// message and the reporter.
func (s *MessageService) ListReports() ([]ReportDTO, error) {
	var out []ReportDTO
	err := s.db.Model(&models.Report{}).
		Select(`reports.id, reports.message_id, reports.reported_by, reports.reason, reports.created_at,
			messages.text AS message_text, messages.type AS message_type, messages.file_url,
			messages.room_id, messages.sender_id,
			users.full_name AS reporter_full_name, users.email AS reporter_email`).
		Joins("LEFT JOIN messages ON messages.id = reports.message_id").
		Joins("LEFT JOIN users ON users.id = reports.reported_by").
		Order("reports.created_at DESC").
		Scan(&out).Error
	return out, err
}

func toMessageDTO(m models.Message, senderName string) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		RoomID:         m.RoomID,
		SenderID:       m.SenderID,
		SenderFullName: senderName,
		Type:           m.Type,
		Text:           m.Text,
		FileURL:        m.FileURL,
		SentAt:         m.SentAt,
		Edited:         m.Edited,
	}
}

func (s *MessageService) resolveSenderNames(msgs []models.Message) (map[uint]string, error) {
	seen := make(map[uint]struct{}, len(msgs))
	ids := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		ids = append(ids, m.SenderID)
	}
	names := make(map[uint]string, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := s.db.Select("id", "full_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.FullName
		}
	}
	return names, nil
}
