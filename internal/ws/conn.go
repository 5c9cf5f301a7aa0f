package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/config"
	"github.com/rebertiger/student-chat/internal/metrics"
	"github.com/rebertiger/student-chat/internal/service"
)

const (
	eventJoinRoom     = "joinRoom"
	eventSendMessage  = "sendMessage"
	eventNewMessage   = "newMessage"
	eventMessageError = "messageError"
)

// Envelope is the wire format for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomData struct {
	RoomID uint `json:"roomId"`
}

// sendMessageData mirrors the browser payload. senderId and senderFullName
// are still accepted for compatibility but ignored: the sender is always the
// authenticated connection.
type sendMessageData struct {
	RoomID      uint    `json:"roomId"`
	MessageText *string `json:"messageText"`
	MessageType string  `json:"messageType"`
	FileURL     *string `json:"fileUrl"`
}

// Client is one websocket connection with its authenticated identity and
// the set of rooms it joined.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	rooms    *service.RoomService
	msgs     *service.MessageService
	userID   uint
	fullName string
	joined   map[uint]bool
	closed   sync.Once
	stopped  sync.Once
}

// closeSend is called only from readPump's defer, after the hub has dropped
// the client, so no publisher can still be sending on the channel.
func (c *Client) closeSend() {
	c.closed.Do(func() { close(c.send) })
}

// drop signals teardown from outside the connection's own goroutines. The
// send channel stays open; writePump exits, the connection closes and
// readPump's defer does the cleanup.
func (c *Client) drop() {
	c.stopped.Do(func() { close(c.done) })
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve authenticates the connection with the same stateful check as the
// REST middleware, then hands it to the read/write pumps.
func Serve(hub *Hub, db *gorm.DB, cfg config.Config, rooms *service.RoomService, msgs *service.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication token required"})
			return
		}
		claims, err := auth.ParseAccessToken(token, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "invalid or expired token"})
			return
		}
		user, err := auth.ResolveUser(db, claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication token required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{
			hub:      hub,
			conn:     conn,
			send:     make(chan []byte, 256),
			done:     make(chan struct{}),
			rooms:    rooms,
			msgs:     msgs,
			userID:   user.ID,
			fullName: user.FullName,
			joined:   make(map[uint]bool),
		}
		metrics.WsConnections.Inc()

		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.closeSend()
		_ = c.conn.Close()
		metrics.WsConnections.Dec()
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.emitError("invalid event")
			continue
		}
		switch env.Event {
		case eventJoinRoom:
			c.handleJoinRoom(env.Data)
		case eventSendMessage:
			c.handleSendMessage(env.Data)
		default:
			c.emitError("unknown event")
		}
	}
}

// handleJoinRoom subscribes the connection to a room channel. Membership is
// required regardless of room visibility; there is no automatic
// subscription and no history replay.
func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var in joinRoomData
	if err := json.Unmarshal(raw, &in); err != nil || in.RoomID == 0 {
		c.emitError("invalid room id")
		return
	}
	if err := c.rooms.Exists(in.RoomID); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.emitError("room not found")
			return
		}
		log.Error().Err(err).Uint("room_id", in.RoomID).Msg("ws join room")
		c.emitError("failed to join room")
		return
	}
	ok, err := c.rooms.IsParticipant(in.RoomID, c.userID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", in.RoomID).Uint("user_id", c.userID).Msg("ws participation check")
		c.emitError("failed to join room")
		return
	}
	if !ok {
		c.emitError("not a participant in this room")
		return
	}
	c.joined[in.RoomID] = true
	c.hub.Subscribe(c, in.RoomID)
}

// handleSendMessage validates, persists, then publishes the stored row to
// every subscriber, the sender included. Failures go back to the sender
// only and are never broadcast or retried.
func (c *Client) handleSendMessage(raw json.RawMessage) {
	var in sendMessageData
	if err := json.Unmarshal(raw, &in); err != nil || in.RoomID == 0 {
		c.emitError("invalid message data")
		return
	}
	if !c.joined[in.RoomID] {
		c.emitError("join the room before sending")
		return
	}
	if in.MessageType == "" {
		in.MessageType = "text"
	}
	if err := service.ValidateContent(in.MessageType, in.MessageText, in.FileURL); err != nil {
		c.emitError("invalid message data")
		return
	}
	dto, err := c.msgs.Create(in.RoomID, c.userID, in.MessageType, in.MessageText, in.FileURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMessage) {
			c.emitError("invalid message data")
			return
		}
		log.Error().Err(err).Uint("room_id", in.RoomID).Uint("user_id", c.userID).Msg("ws persist message")
		c.emitError("failed to send message")
		return
	}
	metrics.WsMessagesTotal.Inc()
	PublishMessage(c.hub, dto)
}

// PublishMessage broadcasts a persisted message to its room channel. The
// upload handler uses it too, so REST file posts reach live subscribers.
func PublishMessage(hub *Hub, dto *service.MessageDTO) {
	b, err := json.Marshal(Envelope{Event: eventNewMessage, Data: mustRaw(dto)})
	if err != nil {
		return
	}
	hub.Publish(dto.RoomID, b)
}

func (c *Client) emitError(reason string) {
	b, err := json.Marshal(Envelope{Event: eventMessageError, Data: mustRaw(reason)})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func mustRaw(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			_ = w.Close()
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
