package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/lorrc/chat-relay-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_WireFormPreserved(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "number stays a number", in: `{"channelId": 17}`, out: `{"channelId":17}`},
		{name: "string stays a string", in: `{"channelId": "17a"}`, out: `{"channelId":"17a"}`},
		{name: "numeric string with leading zero stays quoted", in: `{"channelId": "017"}`, out: `{"channelId":"017"}`},
		{name: "missing id round-trips as null", in: `{}`, out: `{"channelId":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p domain.RoomPayload
			require.NoError(t, json.Unmarshal([]byte(tt.in), &p))

			got, err := json.Marshal(p)
			require.NoError(t, err)
			assert.JSONEq(t, tt.out, string(got))
		})
	}
}

func TestID_RejectsStructuredValues(t *testing.T) {
	for _, in := range []string{`{"channelId": {"id": 1}}`, `{"channelId": [1]}`, `{"channelId": true}`} {
		var p domain.RoomPayload
		assert.Error(t, json.Unmarshal([]byte(in), &p), "payload %s", in)
	}
}

func TestRoomKey_String(t *testing.T) {
	assert.Equal(t, "org:42", domain.OrgRoom("42").String())
	assert.Equal(t, "channel:17", domain.ChannelRoom("17").String())
}
