package domain

import "encoding/json"

// Inbound payload shapes, one per handled event. Parsed at the router
// boundary; a frame that does not decode into its shape is dropped.

// MessagePayload carries a chat message for a channel. Session is a
// pointer so that an absent key can be told apart from an empty session
// string, which is relayed as sent.
type MessagePayload struct {
	ChannelID   ID                     `json:"channelId"`
	Session     *string                `json:"session"`
	AllMessages map[string]interface{} `json:"allMessages"`
}

// ChannelUpdatePayload announces a channel rename to an organization.
type ChannelUpdatePayload struct {
	Organization ID     `json:"organization"`
	ChannelID    ID     `json:"channelId"`
	ChannelName  string `json:"channelName"`
}

// ChannelDeletePayload announces a channel removal to an organization.
type ChannelDeletePayload struct {
	Organization ID `json:"organization"`
	ChannelID    ID `json:"channelId"`
}

// ChannelAddPayload announces a new channel to an organization. Channel is
// relayed verbatim, whatever shape the client sent.
type ChannelAddPayload struct {
	Organization ID              `json:"organization"`
	Channel      json.RawMessage `json:"channel"`
}

// ServerPayload targets an organization room (joinserver/leaveserver).
type ServerPayload struct {
	Organization ID `json:"organization"`
}

// RoomPayload targets a channel room (joinroom/leaveroom).
type RoomPayload struct {
	ChannelID ID `json:"channelId"`
}

// Outbound payload shapes.

// MessageBroadcast is the relayed form of a chat message; AllMessages has
// its owner field stamped with the sender's session before relay.
type MessageBroadcast struct {
	AllMessages map[string]interface{} `json:"allMessages"`
	ChannelID   ID                     `json:"channelId"`
	Session     string                 `json:"session"`
}

// ChannelUpdateBroadcast is the relayed form of updateChannel.
type ChannelUpdateBroadcast struct {
	ChannelID   ID     `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// ChannelDeleteBroadcast is the relayed form of deleteChannel. OrgID is
// keyed "id" on the wire.
type ChannelDeleteBroadcast struct {
	ChannelID ID `json:"channelId"`
	OrgID     ID `json:"id"`
}

// ChannelAddBroadcast is the relayed form of addChannel.
type ChannelAddBroadcast struct {
	Channel json.RawMessage `json:"channel"`
	OrgID   ID              `json:"id"`
}
