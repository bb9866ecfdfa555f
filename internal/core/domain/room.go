package domain

import (
	"encoding/json"
	"errors"
)

// RoomKind distinguishes the two levels of the room hierarchy:
// organization-scoped rooms carry channel-list mutations, channel-scoped
// rooms carry message traffic.
type RoomKind string

const (
	RoomOrg     RoomKind = "org"
	RoomChannel RoomKind = "channel"
)

// RoomKey identifies a broadcast scope. Rooms exist implicitly: a key is
// valid whether or not anyone has joined it.
type RoomKey struct {
	Kind RoomKind
	ID   ID
}

// OrgRoom returns the room key for an organization's channel-list events.
func OrgRoom(id ID) RoomKey {
	return RoomKey{Kind: RoomOrg, ID: id}
}

// ChannelRoom returns the room key for a channel's message traffic.
func ChannelRoom(id ID) RoomKey {
	return RoomKey{Kind: RoomChannel, ID: id}
}

// String renders the key as "org:42" or "channel:17". Used for logging
// only; the separator never appears on the wire.
func (k RoomKey) String() string {
	return string(k.Kind) + ":" + string(k.ID)
}

// ID is an organization or channel identifier carried in event payloads.
// Clients send these as either JSON numbers or JSON strings; the relay
// treats them as opaque and preserves the wire form when re-emitting.
type ID string

var errUnsupportedID = errors.New("id must be a JSON number or string")

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errUnsupportedID
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case 'n':
		if string(data) == "null" {
			*id = ""
			return nil
		}
		return errUnsupportedID
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errUnsupportedID
		}
		*id = ID(n.String())
		return nil
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	b := []byte(id)
	if (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')) && json.Valid(b) {
		return b, nil
	}
	return json.Marshal(string(id))
}
