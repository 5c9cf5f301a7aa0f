package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/service"
)

// GetProfile handles GET /api/profile; the profile row is created lazily on
// first access.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := auth.GetUserID(c)
	profile, err := h.profiles.Get(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		log.Error().Err(err).Uint("user_id", userID).Msg("get profile")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username          string  `json:"username"`
		University        *string `json:"university"`
		Department        *string `json:"department"`
		Bio               *string `json:"bio"`
		ProfilePictureURL *string `json:"profilePictureUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username is required"})
		return
	}
	userID := auth.GetUserID(c)
	err := h.profiles.Update(userID, service.ProfileUpdateInput{
		Username:          req.Username,
		University:        req.University,
		Department:        req.Department,
		Bio:               req.Bio,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		log.Error().Err(err).Uint("user_id", userID).Msg("update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated successfully"})
}
