package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/config"
	"github.com/rebertiger/student-chat/internal/models"
)

// UserService owns registration, login, token refresh and account deletion.
type UserService struct {
	db  *gorm.DB
	cfg config.Config
}

func NewUserService(db *gorm.DB, cfg config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

type RegisterInput struct {
	Email      string
	Password   string
	FullName   string
	University *string
	Department *string
}

// Register creates a new user. A duplicate email is reported as
// ErrEmailTaken whether it is caught by the pre-check or by the unique index.
func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		University:   in.University,
		Department:   in.Department,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// Login verifies the credentials and issues a token pair. Unknown email and
// wrong password both collapse into ErrInvalidCredentials so the response
// never reveals which check failed.
func (s *UserService) Login(email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	at, err := auth.GenerateAccessToken(user.ID, s.cfg.JWTSecret, s.cfg.AccessTokenTTLMinutes)
	if err != nil {
		return nil, err
	}
	rt, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	exp := time.Now().Add(time.Duration(s.cfg.RefreshTokenTTLDays) * 24 * time.Hour)
	if err := auth.SaveRefreshToken(s.db, user.ID, rt, exp); err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: at, RefreshToken: rt, User: user}, nil
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// RefreshTokens rotates a refresh token: the old one is revoked and a new
// pair is issued inside one transaction.
func (s *UserService) RefreshTokens(oldRT string) (*RefreshResult, error) {
	var result RefreshResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rec, err := auth.ValidateRefreshToken(tx, oldRT)
		if err != nil {
			return err
		}
		if err := auth.RevokeRefreshToken(tx, oldRT); err != nil {
			return err
		}
		at, err := auth.GenerateAccessToken(rec.UserID, s.cfg.JWTSecret, s.cfg.AccessTokenTTLMinutes)
		if err != nil {
			return err
		}
		newRT, err := auth.GenerateRefreshToken()
		if err != nil {
			return err
		}
		exp := time.Now().Add(time.Duration(s.cfg.RefreshTokenTTLDays) * 24 * time.Hour)
		if err := auth.SaveRefreshToken(tx, rec.UserID, newRT, exp); err != nil {
			return err
		}
		result.AccessToken = at
		result.RefreshToken = newRT
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes the account. Rooms, participations, messages, profile,
// subject links and refresh tokens go with it through the cascading
// foreign keys; refresh tokens carry no FK, so they are swept explicitly.
func (s *UserService) Delete(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
	})
}
