package domain

// Inbound event names accepted by the relay. Anything else is ignored.
const (
	EventMessage       = "message"
	EventUpdateChannel = "updateChannel"
	EventDeleteChannel = "deleteChannel"
	EventAddChannel    = "addChannel"
	EventJoinServer    = "joinserver"
	EventLeaveServer   = "leaveserver"
	EventJoinRoom      = "joinroom"
	EventLeaveRoom     = "leaveroom"
)

// Event is the payload delivered to room members over WebSocket.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}
