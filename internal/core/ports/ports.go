package ports

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lorrc/chat-relay-backend/internal/core/domain"
)

// RoomDirectory is the port for room membership and fan-out. Implemented
// by the websocket hub. Join and leave are idempotent; broadcasting to a
// room nobody has joined is a no-op.
type RoomDirectory interface {
	Join(connID uuid.UUID, room domain.RoomKey)
	Leave(connID uuid.UUID, room domain.RoomKey)
	Broadcast(room domain.RoomKey, event domain.Event, exclude ...uuid.UUID)
}

// EventRouter is the port the transport feeds inbound frames into.
// Dispatch never fails: unknown events and undecodable payloads are
// dropped rather than surfaced to the connection.
type EventRouter interface {
	Dispatch(connID uuid.UUID, event string, payload json.RawMessage)
}
