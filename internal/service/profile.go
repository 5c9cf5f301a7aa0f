package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rebertiger/student-chat/internal/models"
)

// ProfileService owns the one-to-one user profile.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

type ProfileDTO struct {
	Username          string  `json:"username"`
	University        *string `json:"university"`
	Department        *string `json:"department"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

// Get fetches the caller's profile, creating the empty profile row inside a
// transaction on first access so concurrent fetches cannot race into a
// duplicate insert.
func (s *ProfileService) Get(userID uint) (*ProfileDTO, error) {
	var user models.User
	var profile models.Profile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{UserID: userID}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Create(&profile).Error
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ProfileDTO{
		Username:          user.FullName,
		University:        user.University,
		Department:        user.Department,
		Bio:               profile.Bio,
		ProfilePictureURL: profile.ProfilePicture,
	}, nil
}

type ProfileUpdateInput struct {
	Username          string
	University        *string
	Department        *string
	Bio               *string
	ProfilePictureURL *string
}

// Update writes the user attributes and upserts the profile row in one
// transaction; the upsert removes the fetch-then-insert race.
func (s *ProfileService) Update(userID uint, in ProfileUpdateInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"full_name":  in.Username,
			"university": in.University,
			"department": in.Department,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		profile := models.Profile{UserID: userID, Bio: in.Bio, ProfilePicture: in.ProfilePictureURL}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio", "profile_picture"}),
		}).Create(&profile).Error
	})
}
