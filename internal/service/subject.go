package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rebertiger/student-chat/internal/models"
)

// SubjectService owns the subject catalog and per-user subscriptions.
type SubjectService struct {
	db *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

// List returns the whole catalog, name ascending.
func (s *SubjectService) List() ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Order("name ASC").Find(&subjects).Error
	return subjects, err
}

// Add creates a catalog entry; duplicate names are a conflict.
func (s *SubjectService) Add(name string, description *string) (*models.Subject, error) {
	subject := models.Subject{Name: name, Description: description}
	if err := s.db.Create(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubjectTaken
		}
		return nil, err
	}
	return &subject, nil
}

// ListForUser returns the subjects the user subscribed to, name ascending.
func (s *SubjectService) ListForUser(userID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Model(&models.Subject{}).
		Joins("JOIN user_subjects ON user_subjects.subject_id = subjects.id").
		Where("user_subjects.user_id = ?", userID).
		Order("subjects.name ASC").
		Find(&subjects).Error
	return subjects, err
}

// AddForUser subscribes the user to a subject; re-adding is a no-op.
func (s *SubjectService) AddForUser(userID, subjectID uint) error {
	var count int64
	if err := s.db.Model(&models.Subject{}).Where("id = ?", subjectID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSubjectNotFound
	}
	link := models.UserSubject{UserID: userID, SubjectID: subjectID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// RemoveForUser drops the subscription if present.
func (s *SubjectService) RemoveForUser(userID, subjectID uint) error {
	return s.db.Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Delete(&models.UserSubject{}).Error
}
