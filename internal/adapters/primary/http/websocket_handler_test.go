package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	httpAdapter "github.com/lorrc/chat-relay-backend/internal/adapters/primary/http"
	wsAdapter "github.com/lorrc/chat-relay-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/chat-relay-backend/internal/auth"
	"github.com/lorrc/chat-relay-backend/internal/config"
	"github.com/lorrc/chat-relay-backend/internal/core/domain"
	"github.com/lorrc/chat-relay-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayFixture struct {
	server *httptest.Server
	hub    *wsAdapter.Hub
	tm     *auth.TokenManager
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		WebSocket: config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	tm := auth.NewTokenManager("test-secret", time.Hour)
	hub := wsAdapter.NewHub(logger)
	go hub.Run()

	relay := services.NewRelayService(hub, logger)
	handler := httpAdapter.NewWebSocketHandler(hub, relay, tm, cfg, logger)

	r := chi.NewRouter()
	r.Get("/api/v1/ws", handler.ServeHTTP)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &relayFixture{server: server, hub: hub, tm: tm}
}

func (f *relayFixture) dial(t *testing.T) *gws.Conn {
	t.Helper()

	token, err := f.tm.GenerateToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/ws?token=" + token
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *gws.Conn, event string, payload string) {
	t.Helper()
	frame := `{"event":"` + event + `","payload":` + payload + `}`
	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte(frame)))
}

// waitForMembers polls the hub until the room has the wanted member count.
func (f *relayFixture) waitForMembers(t *testing.T, room domain.RoomKey, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.hub.MembersInRoom(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d members", room, want)
}

func readEvent(t *testing.T, conn *gws.Conn) (string, map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &frame))

	payload := map[string]interface{}{}
	if len(frame.Payload) > 0 {
		require.NoError(t, json.Unmarshal(frame.Payload, &payload))
	}
	return frame.Event, payload
}

func TestWebSocketHandler_RejectsBadTokens(t *testing.T) {
	f := newRelayFixture(t)

	t.Run("missing token", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/ws"
		_, resp, err := gws.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/ws?token=not-a-jwt"
		_, resp, err := gws.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestWebSocketHandler_MessageFlow(t *testing.T) {
	f := newRelayFixture(t)
	room := domain.ChannelRoom("17")

	receiver := f.dial(t)
	sender := f.dial(t)

	send(t, receiver, "joinroom", `{"channelId": 17}`)
	send(t, sender, "joinroom", `{"channelId": 17}`)
	f.waitForMembers(t, room, 2)

	send(t, sender, "message", `{"channelId": 17, "session": "u1", "allMessages": {"text": "hi"}}`)

	// Both room members receive the relayed message, sender included.
	for _, conn := range []*gws.Conn{receiver, sender} {
		event, payload := readEvent(t, conn)
		assert.Equal(t, "message", event)
		assert.Equal(t, float64(17), payload["channelId"])
		assert.Equal(t, "u1", payload["session"])
		assert.Equal(t,
			map[string]interface{}{"text": "hi", "owner": "u1"},
			payload["allMessages"],
		)
	}
}

func TestWebSocketHandler_OrgScoping(t *testing.T) {
	f := newRelayFixture(t)

	inOrg := f.dial(t)
	otherOrg := f.dial(t)

	send(t, inOrg, "joinserver", `{"organization": 5}`)
	send(t, otherOrg, "joinserver", `{"organization": 6}`)
	f.waitForMembers(t, domain.OrgRoom("5"), 1)
	f.waitForMembers(t, domain.OrgRoom("6"), 1)

	send(t, inOrg, "addChannel", `{"organization": 5, "channel": {"id": 9, "name": "general"}}`)

	event, payload := readEvent(t, inOrg)
	assert.Equal(t, "addChannel", event)
	assert.Equal(t, float64(5), payload["id"])
	assert.Equal(t,
		map[string]interface{}{"id": float64(9), "name": "general"},
		payload["channel"],
	)

	// The other org's member must see nothing.
	require.NoError(t, otherOrg.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := otherOrg.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketHandler_LeaveServerStopsDelivery(t *testing.T) {
	f := newRelayFixture(t)
	room := domain.OrgRoom("5")

	conn := f.dial(t)
	send(t, conn, "joinserver", `{"organization": 5}`)
	f.waitForMembers(t, room, 1)

	send(t, conn, "leaveserver", `{"organization": 5}`)
	f.waitForMembers(t, room, 0)

	send(t, conn, "updateChannel", `{"organization": 5, "channelId": 17, "channelName": "renamed"}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocketHandler_DisconnectCleansRooms(t *testing.T) {
	f := newRelayFixture(t)
	room := domain.ChannelRoom("17")

	conn := f.dial(t)
	send(t, conn, "joinroom", `{"channelId": 17}`)
	f.waitForMembers(t, room, 1)

	require.NoError(t, conn.Close())
	f.waitForMembers(t, room, 0)
}
