// Package gateway is the realtime edge: it owns websocket connections, fans
// full-snapshot updates out to rooms and routes inbound commands to the
// services. Every state change follows the same shape: mutate, re-read,
// broadcast the whole document.
package gateway

import (
	"sync"

	"go.uber.org/zap"
)

type room struct {
	clients map[*Client]struct{}

	// order serializes command handling for the room, so snapshots are
	// observed in the order their commands were applied.
	order sync.Mutex
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
	log   *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		log:   log,
	}
}

// Add registers a client under a room key. Keys carry the activity kind
// (routers build them via pollRoom/quizRoom), so a poll and a quiz that drew
// the same room code never share a broadcast room.
func (h *Hub) Add(roomKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomKey]
	if !ok {
		r = &room{clients: make(map[*Client]struct{})}
		h.rooms[roomKey] = r
	}
	r.clients[c] = struct{}{}
	c.room = roomKey
}

func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		c.closeSend()

		if len(r.clients) == 0 {
			delete(h.rooms, c.room)
		}
	}
}

// Serialize runs fn while holding the room's command lock. Used by routers to
// keep the mutate-then-broadcast sequence atomic per room. If the room has no
// clients left there is nobody to observe ordering, so fn runs unserialized.
func (h *Hub) Serialize(roomKey string, fn func()) {
	h.mu.RLock()
	r, ok := h.rooms[roomKey]
	h.mu.RUnlock()

	if !ok {
		fn()
		return
	}

	r.order.Lock()
	defer r.order.Unlock()
	fn()
}

// Broadcast delivers msg to every client in the room. Delivery goes through
// Client.Send, which never blocks and is safe against a concurrent close;
// slow clients with a full buffer are skipped rather than stalling the room.
func (h *Hub) Broadcast(roomKey string, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	for cl := range r.clients {
		cl.Send(msg)
	}
}

// CloseRoom sends a terminal message to every client in the room and closes
// their outbound queues. Called after a cancel.
func (h *Hub) CloseRoom(roomKey string, final *Message) {
	h.mu.Lock()
	r, ok := h.rooms[roomKey]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.rooms, roomKey)
	h.mu.Unlock()

	for cl := range r.clients {
		cl.Send(final)
		cl.closeSend()
	}
}

// RoomSize reports how many clients are connected to a room.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomKey]
	if !ok {
		return 0
	}
	return len(r.clients)
}
