package websocket_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/domain/model/websocket"
	"github.com/secmon-lab/bqchat/pkg/utils/clock"
)

func TestChatMessageFromBytes(t *testing.T) {
	var m websocket.ChatMessage
	gt.NoError(t, m.FromBytes([]byte(`{"type":"message","content":"describe sales","timestamp":1700000000}`)))
	gt.V(t, m.Content).Equal("describe sales")
	gt.True(t, m.IsValidMessageType())

	gt.NoError(t, m.FromBytes([]byte(`{"type":"history"}`)))
	gt.False(t, m.IsValidMessageType())

	gt.Error(t, m.FromBytes([]byte(`{`)))
}

func TestChatResponse(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ctx := clock.With(t.Context(), func() time.Time { return now })

	raw, err := websocket.NewSessionResponse(ctx, "abc").ToBytes()
	gt.NoError(t, err).Required()

	var got map[string]any
	gt.NoError(t, json.Unmarshal(raw, &got))
	gt.V(t, got["type"]).Equal("session")
	gt.V(t, got["session_id"]).Equal("abc")
	gt.V(t, got["timestamp"]).Equal(float64(1700000000))

	raw, err = websocket.NewChatResponse(ctx, websocket.TypeTrace, "Listing tables").ToBytes()
	gt.NoError(t, err).Required()
	gt.S(t, string(raw)).NotContains("session_id")
}
