package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/metrics"
	"github.com/rebertiger/student-chat/internal/service"
	"github.com/rebertiger/student-chat/internal/upload"
	"github.com/rebertiger/student-chat/internal/ws"
)

func roomIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("roomId")
	if raw == "" {
		raw = c.Param("id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room id"})
		return 0, false
	}
	return uint(id), true
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListPublic(100)
	if err != nil {
		log.Error().Err(err).Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// CreateRoom handles POST /api/rooms. The subject reference must be nil or
// resolve to an existing subject.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req struct {
		RoomName  string `json:"room_name"`
		SubjectID *uint  `json:"subject_id"`
		IsPublic  *bool  `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	req.RoomName = strings.TrimSpace(req.RoomName)
	if req.RoomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "room name is required"})
		return
	}
	if len(req.RoomName) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid room name"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	userID := auth.GetUserID(c)
	room, err := h.rooms.Create(req.RoomName, req.SubjectID, isPublic, userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubject) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid subject reference"})
			return
		}
		log.Error().Err(err).Uint("user_id", userID).Str("name", req.RoomName).Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "room created successfully", "room": room})
}

// GetRoom handles GET /api/rooms/:roomId.
func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.rooms.Get(roomID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
			return
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("get room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// JoinRoom handles POST /api/rooms/:roomId/join. Joining twice is a no-op
// signalled through isAlreadyParticipant.
func (h *Handler) JoinRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID := auth.GetUserID(c)
	already, err := h.rooms.Join(roomID, userID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotJoinable) {
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found or not public"})
			return
		}
		log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", userID).Msg("join room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to join room"})
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"message": "already a participant in this room", "isAlreadyParticipant": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "successfully joined room", "isAlreadyParticipant": false})
}

// DeleteRoom handles DELETE /api/rooms/:roomId, creator only.
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID := auth.GetUserID(c)
	if err := h.rooms.Delete(roomID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		case errors.Is(err, service.ErrNotRoomCreator):
			c.JSON(http.StatusForbidden, gin.H{"message": "only the creator can delete a room"})
		default:
			log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", userID).Msg("delete room")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete room"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
}

// UploadFile handles POST /api/rooms/:roomId/files: store the file, persist
// it as a message, then broadcast it to the room channel like any relayed
// message.
func (h *Handler) UploadFile(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	userID := auth.GetUserID(c)
	participant, err := h.rooms.IsParticipant(roomID, userID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", userID).Msg("upload participation check")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload file"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"message": "you are not a participant in this room"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no file uploaded"})
		return
	}
	desc, err := h.uploads.Save(fh)
	if err != nil {
		if errors.Is(err, upload.ErrTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "file exceeds size limit"})
			return
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload file"})
		return
	}
	msg, err := h.messages.CreateFromUpload(roomID, userID, desc)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist upload message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to upload file"})
		return
	}
	metrics.UploadsTotal.WithLabelValues(desc.MessageType).Inc()
	ws.PublishMessage(h.hub, msg)
	c.JSON(http.StatusCreated, gin.H{"message": "file uploaded successfully", "messageData": msg})
}
