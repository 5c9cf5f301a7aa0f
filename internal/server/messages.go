package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/service"
)

// requireParticipant resolves the caller's membership before history or
// message writes are allowed. Membership is required even for public rooms.
func (h *Handler) requireParticipant(c *gin.Context, roomID uint) bool {
	userID := auth.GetUserID(c)
	ok, err := h.rooms.IsParticipant(roomID, userID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", userID).Msg("participation check")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "you are not a participant in this room"})
		return false
	}
	return true
}

// ListMessages handles GET /api/rooms/:roomId/messages and
// GET /api/messages/:roomId.
func (h *Handler) ListMessages(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	if err := h.rooms.Exists(roomID); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
			return
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("list messages room check")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list messages"})
		return
	}
	if !h.requireParticipant(c, roomID) {
		return
	}
	limit := 0 // no explicit limit: the service returns up to its full-history cap
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	var beforeID uint
	if v, err := strconv.Atoi(c.Query("before_id")); err == nil && v > 0 {
		beforeID = uint(v)
	}
	msgs, err := h.messages.ListByRoom(roomID, limit, beforeID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list messages"})
		return
	}
	total, err := h.messages.Count(roomID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("count messages")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "totalMessages": total})
}

// CreateMessage handles POST /api/messages/:roomId.
func (h *Handler) CreateMessage(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req struct {
		MessageText *string `json:"messageText"`
		MessageType string  `json:"messageType"`
		FileURL     *string `json:"fileUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	if !h.requireParticipant(c, roomID) {
		return
	}
	userID := auth.GetUserID(c)
	msg, err := h.messages.Create(roomID, userID, req.MessageType, req.MessageText, req.FileURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMessage):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid message data"})
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		default:
			log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", userID).Msg("create message")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create message"})
		}
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// CountMessages handles GET /api/messages/:roomId/count.
func (h *Handler) CountMessages(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	total, err := h.messages.Count(roomID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("count messages")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to count messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalMessages": total})
}

// ReportMessage handles POST /api/messages/:messageId/report.
func (h *Handler) ReportMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil || messageID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid message id"})
		return
	}
	var req struct {
		Reason *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	userID := auth.GetUserID(c)
	report, err := h.messages.Report(uint(messageID), &userID, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
			return
		}
		log.Error().Err(err).Int("message_id", messageID).Msg("report message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to report message"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ReportMessageBody handles POST /api/reports/message, the body-addressed
// variant where the reporter is optional.
func (h *Handler) ReportMessageBody(c *gin.Context) {
	var req struct {
		MessageID  uint    `json:"messageId"`
		ReportedBy *uint   `json:"reportedBy"`
		Reason     *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.MessageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message id is required"})
		return
	}
	report, err := h.messages.Report(req.MessageID, req.ReportedBy, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
			return
		}
		log.Error().Err(err).Uint("message_id", req.MessageID).Msg("report message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to report message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "message reported successfully", "report": report})
}

// ListReports handles GET /api/reports.
func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.messages.ListReports()
	if err != nil {
		log.Error().Err(err).Msg("list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}
