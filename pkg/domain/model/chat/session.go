package chat

import (
	"context"
	"time"

	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/utils/clock"
)

const WelcomeMessage = "👋 Hello! I'm your AI assistant. How can I help you today?"

type Session struct {
	ID        types.SessionID `firestore:"id" json:"id"`
	Profile   string          `firestore:"profile" json:"profile"`
	Mode      Mode            `firestore:"mode" json:"mode"`
	CreatedAt time.Time       `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time       `firestore:"updated_at" json:"updated_at"`
}

func NewSession(ctx context.Context, profile *Profile) *Session {
	now := clock.Now(ctx)
	return &Session{
		ID:        types.NewSessionID(),
		Profile:   profile.Name,
		Mode:      profile.Mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (x *Session) Touch(ctx context.Context) {
	x.UpdatedAt = clock.Now(ctx)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTrace     Role = "trace"
)

type Message struct {
	ID        types.MessageID `firestore:"id" json:"id"`
	SessionID types.SessionID `firestore:"session_id" json:"session_id"`
	Role      Role            `firestore:"role" json:"role"`
	Content   string          `firestore:"content" json:"content"`
	CreatedAt time.Time       `firestore:"created_at" json:"created_at"`
}

func NewMessage(ctx context.Context, sessionID types.SessionID, role Role, content string) *Message {
	return &Message{
		ID:        types.NewMessageID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: clock.Now(ctx),
	}
}
