package ws

import "sync"

// Hub owns the per-room subscriber sets. A connection subscribes to a room
// channel only on an explicit joinRoom; publishing reaches every current
// subscriber and nobody else. There is no history replay.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]struct{})}
}

// Subscribe registers the client's interest in a room channel.
func (h *Hub) Subscribe(c *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		h.rooms[roomID] = set
	}
	set[c] = struct{}{}
}

// Unsubscribe removes the client from every room it joined. Called once on
// disconnect; the application does no other per-connection bookkeeping.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, set := range h.rooms {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Publish fans an event out to every subscriber of the room, the sender's
// own connection included. Clients that cannot keep up are unsubscribed and
// signalled to stop; their send channel is only ever closed by readPump, so
// a concurrent emitError cannot hit a closed channel.
func (h *Hub) Publish(roomID uint, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.rooms[roomID]
	for c := range set {
		select {
		case c.send <- data:
		default:
			c.drop()
			for rid, s := range h.rooms {
				delete(s, c)
				if len(s) == 0 {
					delete(h.rooms, rid)
				}
			}
		}
	}
}

// Online returns the number of connections subscribed to a room.
func (h *Hub) Online(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
