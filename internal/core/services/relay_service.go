package services

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/chat-relay-backend/internal/core/domain"
	"github.com/lorrc/chat-relay-backend/internal/core/ports"
)

// RelayService routes inbound events to their handlers and computes the
// outbound event and target room for each. Handlers never block and never
// fail: a malformed or incomplete payload drops the event, nothing else.
type RelayService struct {
	rooms    ports.RoomDirectory
	handlers map[string]handlerFunc
	logger   *slog.Logger
}

type handlerFunc func(connID uuid.UUID, payload json.RawMessage)

// Ensure RelayService implements the EventRouter interface.
var _ ports.EventRouter = (*RelayService)(nil)

// NewRelayService creates the event router with its dispatch table.
func NewRelayService(rooms ports.RoomDirectory, logger *slog.Logger) *RelayService {
	s := &RelayService{
		rooms:  rooms,
		logger: logger.With("component", "relay_service"),
	}

	s.handlers = map[string]handlerFunc{
		domain.EventMessage:       s.handleMessage,
		domain.EventUpdateChannel: s.handleUpdateChannel,
		domain.EventDeleteChannel: s.handleDeleteChannel,
		domain.EventAddChannel:    s.handleAddChannel,
		domain.EventJoinServer:    s.handleJoinServer,
		domain.EventLeaveServer:   s.handleLeaveServer,
		domain.EventJoinRoom:      s.handleJoinRoom,
		domain.EventLeaveRoom:     s.handleLeaveRoom,
	}

	return s
}

// Dispatch routes one inbound event by name. Events with no registered
// handler are ignored for forward compatibility with newer clients.
func (s *RelayService) Dispatch(connID uuid.UUID, event string, payload json.RawMessage) {
	handler, ok := s.handlers[event]
	if !ok {
		s.logger.Debug("ignoring unknown event", "event", event, "conn_id", connID)
		return
	}
	handler(connID, payload)
}

func (s *RelayService) handleMessage(connID uuid.UUID, payload json.RawMessage) {
	if emptyPayload(payload) {
		return
	}

	var p domain.MessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Debug("dropping malformed message payload", "conn_id", connID, "error", err)
		return
	}
	if p.ChannelID == "" || p.Session == nil || p.AllMessages == nil {
		s.logger.Debug("dropping message with missing fields", "conn_id", connID)
		return
	}

	// Stamp ownership before relay. This is the only payload
	// transformation in the relay.
	p.AllMessages["owner"] = *p.Session

	s.rooms.Broadcast(domain.ChannelRoom(p.ChannelID), domain.Event{
		Name: domain.EventMessage,
		Payload: domain.MessageBroadcast{
			AllMessages: p.AllMessages,
			ChannelID:   p.ChannelID,
			Session:     *p.Session,
		},
	})
}

func (s *RelayService) handleUpdateChannel(connID uuid.UUID, payload json.RawMessage) {
	if emptyPayload(payload) {
		return
	}

	var p domain.ChannelUpdatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Debug("dropping malformed updateChannel payload", "conn_id", connID, "error", err)
		return
	}
	if p.Organization == "" || p.ChannelID == "" || p.ChannelName == "" {
		s.logger.Debug("dropping updateChannel with missing fields", "conn_id", connID)
		return
	}

	s.rooms.Broadcast(domain.OrgRoom(p.Organization), domain.Event{
		Name: domain.EventUpdateChannel,
		Payload: domain.ChannelUpdateBroadcast{
			ChannelID:   p.ChannelID,
			ChannelName: p.ChannelName,
		},
	})
}

// handleDeleteChannel has no empty-payload guard and relays missing
// fields as null, matching the established wire behavior.
func (s *RelayService) handleDeleteChannel(connID uuid.UUID, payload json.RawMessage) {
	var p domain.ChannelDeletePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Debug("dropping malformed deleteChannel payload", "conn_id", connID, "error", err)
			return
		}
	}

	s.rooms.Broadcast(domain.OrgRoom(p.Organization), domain.Event{
		Name: domain.EventDeleteChannel,
		Payload: domain.ChannelDeleteBroadcast{
			ChannelID: p.ChannelID,
			OrgID:     p.Organization,
		},
	})
}

// handleAddChannel has no empty-payload guard, like handleDeleteChannel.
func (s *RelayService) handleAddChannel(connID uuid.UUID, payload json.RawMessage) {
	var p domain.ChannelAddPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Debug("dropping malformed addChannel payload", "conn_id", connID, "error", err)
			return
		}
	}

	s.rooms.Broadcast(domain.OrgRoom(p.Organization), domain.Event{
		Name: domain.EventAddChannel,
		Payload: domain.ChannelAddBroadcast{
			Channel: p.Channel,
			OrgID:   p.Organization,
		},
	})
}

func (s *RelayService) handleJoinServer(connID uuid.UUID, payload json.RawMessage) {
	if org, ok := s.parseServerPayload(connID, payload); ok {
		s.rooms.Join(connID, domain.OrgRoom(org))
	}
}

func (s *RelayService) handleLeaveServer(connID uuid.UUID, payload json.RawMessage) {
	if org, ok := s.parseServerPayload(connID, payload); ok {
		s.rooms.Leave(connID, domain.OrgRoom(org))
	}
}

func (s *RelayService) handleJoinRoom(connID uuid.UUID, payload json.RawMessage) {
	if ch, ok := s.parseRoomPayload(connID, payload); ok {
		s.rooms.Join(connID, domain.ChannelRoom(ch))
	}
}

func (s *RelayService) handleLeaveRoom(connID uuid.UUID, payload json.RawMessage) {
	if ch, ok := s.parseRoomPayload(connID, payload); ok {
		s.rooms.Leave(connID, domain.ChannelRoom(ch))
	}
}

func (s *RelayService) parseServerPayload(connID uuid.UUID, payload json.RawMessage) (domain.ID, bool) {
	if emptyPayload(payload) {
		return "", false
	}

	var p domain.ServerPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Organization == "" {
		s.logger.Debug("dropping membership event with bad organization", "conn_id", connID)
		return "", false
	}
	return p.Organization, true
}

func (s *RelayService) parseRoomPayload(connID uuid.UUID, payload json.RawMessage) (domain.ID, bool) {
	if emptyPayload(payload) {
		return "", false
	}

	var p domain.RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.ChannelID == "" {
		s.logger.Debug("dropping membership event with bad channelId", "conn_id", connID)
		return "", false
	}
	return p.ChannelID, true
}

// emptyPayload reports whether a payload counts as absent for the guarded
// handlers: missing, null, or an empty/zero JSON value.
func emptyPayload(payload json.RawMessage) bool {
	switch string(bytes.TrimSpace(payload)) {
	case "", "null", "{}", "[]", `""`, "0", "false":
		return true
	}
	return false
}
