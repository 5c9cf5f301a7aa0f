package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebertiger/student-chat/internal/service"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 256), done: make(chan struct{}), joined: make(map[uint]bool)}
}

func TestHub_Online_EmptyRoom(t *testing.T) {
	hub := NewHub()
	if hub.Online(1) != 0 {
		t.Errorf("Online() for empty room = %d, want 0", hub.Online(1))
	}
}

func TestHub_SubscribePublish(t *testing.T) {
	hub := NewHub()
	a := newTestClient()
	b := newTestClient()
	hub.Subscribe(a, 1)
	hub.Subscribe(b, 1)

	if hub.Online(1) != 2 {
		t.Fatalf("Online(1) = %d, want 2", hub.Online(1))
	}

	msg := []byte(`{"event":"newMessage"}`)
	hub.Publish(1, msg)

	for i, c := range []*Client{a, b} {
		select {
		case got := <-c.send:
			if string(got) != string(msg) {
				t.Errorf("client %d got %s, want %s", i, got, msg)
			}
		default:
			t.Errorf("client %d did not receive publish", i)
		}
	}
}

func TestHub_Publish_DoesNotCrossRooms(t *testing.T) {
	hub := NewHub()
	a := newTestClient()
	b := newTestClient()
	hub.Subscribe(a, 1)
	hub.Subscribe(b, 2)

	hub.Publish(1, []byte("room1"))

	select {
	case <-b.send:
		t.Error("subscriber of room 2 received room 1 publish")
	default:
	}
	select {
	case <-a.send:
	default:
		t.Error("subscriber of room 1 missed publish")
	}
}

func TestHub_Unsubscribe_RemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Subscribe(c, 1)
	hub.Subscribe(c, 2)

	hub.Unsubscribe(c)

	if hub.Online(1) != 0 || hub.Online(2) != 0 {
		t.Errorf("Online after Unsubscribe = %d,%d, want 0,0", hub.Online(1), hub.Online(2))
	}
}

func TestHub_Subscribe_Idempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Subscribe(c, 1)
	hub.Subscribe(c, 1)

	if hub.Online(1) != 1 {
		t.Errorf("Online(1) = %d, want 1", hub.Online(1))
	}
}

func TestHub_Publish_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{send: make(chan []byte), done: make(chan struct{}), joined: make(map[uint]bool)} // unbuffered, never drained
	ok := newTestClient()
	hub.Subscribe(slow, 1)
	hub.Subscribe(ok, 1)

	hub.Publish(1, []byte("x"))

	if hub.Online(1) != 1 {
		t.Errorf("Online(1) after slow-client drop = %d, want 1", hub.Online(1))
	}
	select {
	case <-slow.done:
	default:
		t.Error("slow client was not signalled to stop")
	}
	select {
	case <-ok.send:
	default:
		t.Error("healthy client missed publish")
	}
}

func TestHub_EmitErrorAfterSlowDrop(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, send: make(chan []byte), done: make(chan struct{}), joined: make(map[uint]bool)}
	hub.Subscribe(slow, 1)

	hub.Publish(1, []byte("x")) // drops the unbuffered client

	// the send channel must still be open: emitError runs on the dropped
	// client's own read loop and must not panic
	slow.emitError("invalid message data")

	if hub.Online(1) != 0 {
		t.Errorf("Online(1) after drop = %d, want 0", hub.Online(1))
	}
}

func TestPublishMessage_EnvelopesDTO(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Subscribe(c, 7)

	text := "hello"
	dto := &service.MessageDTO{ID: 3, RoomID: 7, SenderID: 2, SenderFullName: "Ada Lovelace", Type: "text", Text: &text}
	PublishMessage(hub, dto)

	var env Envelope
	select {
	case raw := <-c.send:
		require.NoError(t, json.Unmarshal(raw, &env))
	default:
		t.Fatal("subscriber did not receive newMessage")
	}
	require.Equal(t, "newMessage", env.Event)

	var got service.MessageDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, dto.ID, got.ID)
	require.Equal(t, dto.RoomID, got.RoomID)
	require.Equal(t, dto.SenderFullName, got.SenderFullName)
	require.NotNil(t, got.Text)
	require.Equal(t, text, *got.Text)
}

func TestClient_EmitError_OnlyToSelf(t *testing.T) {
	hub := NewHub()
	a := newTestClient()
	a.hub = hub
	b := newTestClient()
	hub.Subscribe(a, 1)
	hub.Subscribe(b, 1)

	a.emitError("invalid message data")

	select {
	case raw := <-a.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		require.Equal(t, "messageError", env.Event)
	default:
		t.Fatal("originating client did not receive messageError")
	}
	select {
	case <-b.send:
		t.Error("messageError leaked to another subscriber")
	default:
	}
}
