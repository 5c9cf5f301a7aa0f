package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/service"
)

// ListSubjects handles GET /api/subjects.
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjects.List()
	if err != nil {
		log.Error().Err(err).Msg("list subjects")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list subjects"})
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// AddSubject handles POST /api/subjects.
func (h *Handler) AddSubject(c *gin.Context) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject name is required"})
		return
	}
	subject, err := h.subjects.Add(req.Name, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrSubjectTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "subject already exists"})
			return
		}
		log.Error().Err(err).Str("name", req.Name).Msg("add subject")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to add subject"})
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// ListUserSubjects handles GET /api/subjects/user.
func (h *Handler) ListUserSubjects(c *gin.Context) {
	userID := auth.GetUserID(c)
	subjects, err := h.subjects.ListForUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("list user subjects")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list subjects"})
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// AddUserSubject handles POST /api/subjects/user; re-adding is a no-op.
func (h *Handler) AddUserSubject(c *gin.Context) {
	var req struct {
		SubjectID uint `json:"subjectId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SubjectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject id is required"})
		return
	}
	userID := auth.GetUserID(c)
	if err := h.subjects.AddForUser(userID, req.SubjectID); err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid subject reference"})
			return
		}
		log.Error().Err(err).Uint("user_id", userID).Uint("subject_id", req.SubjectID).Msg("add user subject")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to add subject"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "subject added to user"})
}

// RemoveUserSubject handles DELETE /api/subjects/user/:subjectId.
func (h *Handler) RemoveUserSubject(c *gin.Context) {
	subjectID, err := strconv.Atoi(c.Param("subjectId"))
	if err != nil || subjectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid subject id"})
		return
	}
	userID := auth.GetUserID(c)
	if err := h.subjects.RemoveForUser(userID, uint(subjectID)); err != nil {
		log.Error().Err(err).Uint("user_id", userID).Int("subject_id", subjectID).Msg("remove user subject")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to remove subject"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject removed from user"})
}
