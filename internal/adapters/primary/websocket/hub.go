package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/chat-relay-backend/internal/core/domain"
	"github.com/lorrc/chat-relay-backend/internal/core/ports"
)

// Hub tracks the set of active Clients and the rooms they have joined,
// and fans events out to room members. It is both the connection registry
// and the room directory: membership is the only state, so tearing a
// connection out of every room is all a disconnect has to do.
type Hub struct {
	// conns maps connection IDs to their clients
	conns map[uuid.UUID]*Client

	// rooms maps room keys to member clients
	rooms map[domain.RoomKey]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the conns and rooms maps
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the RoomDirectory interface.
var _ ports.RoomDirectory = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:      make(map[uuid.UUID]*Client),
		rooms:      make(map[domain.RoomKey]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Run starts the hub's registration loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient adds a client to the hub with an empty room set
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[client.ID] = client

	h.logger.Info("client registered",
		"conn_id", client.ID,
		"user_id", client.UserID,
		"total_connections", len(h.conns),
	)
}

// unregisterClient removes a client from the hub and every room it
// joined. Idempotent: unregistering an unknown client is a no-op.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[client.ID]; !ok {
		return
	}
	delete(h.conns, client.ID)

	for _, room := range client.GetRooms() {
		h.removeFromRoom(client, room)
	}

	client.CloseSend()

	h.logger.Info("client unregistered",
		"conn_id", client.ID,
		"user_id", client.UserID,
	)
}

// Join adds the connection to the room's member set, creating the room on
// first join. Joining twice is the same as joining once.
func (h *Hub) Join(connID uuid.UUID, room domain.RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.AddRoom(room)

	h.logger.Debug("client joined room",
		"conn_id", connID,
		"room", room.String(),
	)
}

// Leave removes the connection from the room. Leaving a room never joined
// is a no-op, not an error.
func (h *Hub) Leave(connID uuid.UUID, room domain.RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}

	h.removeFromRoom(client, room)
	client.RemoveRoom(room)

	h.logger.Debug("client left room",
		"conn_id", connID,
		"room", room.String(),
	)
}

// removeFromRoom drops the client from a room's member set and collects
// the room once it is empty. Caller must hold mu.
func (h *Hub) removeFromRoom(client *Client, room domain.RoomKey) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers the event to every current member of the room except
// those listed in exclude. Delivery is fire and forget: a member whose
// send buffer is full is skipped and unregistered, never blocking
// delivery to the rest. An empty room is a successful no-op.
//
// The sends never block, so the member lock is held across delivery;
// unregisterClient closes a member's send channel only under the write
// lock, so a close can never interleave with a send.
func (h *Hub) Broadcast(room domain.RoomKey, event domain.Event, exclude ...uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	h.logger.Debug("broadcasting event",
		"event", event.Name,
		"room", room.String(),
		"member_count", len(members),
	)

	for client := range members {
		if excluded(client.ID, exclude) {
			continue
		}

		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full, unregister them
			h.logger.Warn("client send buffer full, unregistering",
				"conn_id", client.ID,
			)
			go func(c *Client) { h.Unregister <- c }(client)
		}
	}
}

func excluded(id uuid.UUID, exclude []uuid.UUID) bool {
	for _, ex := range exclude {
		if id == ex {
			return true
		}
	}
	return false
}

// ConnectionCount returns the number of registered connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RoomCount returns the number of rooms with at least one member
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// MembersInRoom returns the number of connections joined to a room
func (h *Hub) MembersInRoom(room domain.RoomKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}
