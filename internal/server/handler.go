package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/service"
	"github.com/rebertiger/student-chat/internal/upload"
	"github.com/rebertiger/student-chat/internal/ws"
)

// Handler aggregates the HTTP handlers; services are injected.
type Handler struct {
	users    *service.UserService
	rooms    *service.RoomService
	messages *service.MessageService
	profiles *service.ProfileService
	subjects *service.SubjectService
	uploads  *upload.Store
	hub      *ws.Hub
}

func NewHandler(
	users *service.UserService,
	rooms *service.RoomService,
	messages *service.MessageService,
	profiles *service.ProfileService,
	subjects *service.SubjectService,
	uploads *upload.Store,
	hub *ws.Hub,
) *Handler {
	return &Handler{
		users:    users,
		rooms:    rooms,
		messages: messages,
		profiles: profiles,
		subjects: subjects,
		uploads:  uploads,
		hub:      hub,
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		FullName   string  `json:"full_name"`
		University *string `json:"university"`
		Department *string `json:"department"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email, password and full name are required"})
		return
	}
	if len(req.Password) < 4 || len(req.Password) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid password"})
		return
	}
	user, err := h.users.Register(service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		University: req.University,
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "user with this email already exists"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully", "user": user})
}

// Login handles POST /api/auth/login. Unknown email and wrong password get
// the same response body.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}
	result, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user":          result.User,
	})
}

// RefreshToken handles POST /api/auth/refresh.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	result, err := h.users.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("refresh token")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.AccessToken, "refresh_token": result.RefreshToken})
}

// DeleteAccount handles DELETE /api/auth/delete; the cascading foreign keys
// take the caller's rooms, messages, participations and profile with it.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID := auth.GetUserID(c)
	if err := h.users.Delete(userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		log.Error().Err(err).Uint("user_id", userID).Msg("delete account")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user and all associated data deleted successfully"})
}
