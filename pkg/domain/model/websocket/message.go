package websocket

import (
	"context"
	"encoding/json"

	"github.com/secmon-lab/bqchat/pkg/utils/clock"
)

const (
	TypeMessage = "message"
	TypePing    = "ping"
	TypePong    = "pong"
	TypeStatus  = "status"
	TypeTrace   = "trace"
	TypeError   = "error"
	TypeSession = "session"
)

// ChatMessage is sent from the browser to the server.
type ChatMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ChatResponse is sent from the server to the browser.
type ChatResponse struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (r *ChatResponse) ToBytes() ([]byte, error) {
	return json.Marshal(r)
}

func (m *ChatMessage) FromBytes(data []byte) error {
	return json.Unmarshal(data, m)
}

func (m *ChatMessage) IsValidMessageType() bool {
	switch m.Type {
	case TypeMessage, TypePing:
		return true
	default:
		return false
	}
}

func NewChatResponse(ctx context.Context, msgType, content string) *ChatResponse {
	return &ChatResponse{
		Type:      msgType,
		Content:   content,
		Timestamp: clock.Now(ctx).Unix(),
	}
}

func NewSessionResponse(ctx context.Context, sessionID string) *ChatResponse {
	resp := NewChatResponse(ctx, TypeSession, "")
	resp.SessionID = sessionID
	return resp
}
