package interfaces

import (
	"context"

	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
)

// ChatUseCases is consumed by the chat transports (CLI, websocket, HTTP).
type ChatUseCases interface {
	NewSession(ctx context.Context, profileName string) (*chat.Session, error)
	Session(ctx context.Context, id types.SessionID) (*chat.Session, error)
	RestoreSession(ctx context.Context, id types.SessionID) (*chat.Session, error)
	CloseSession(ctx context.Context, ssn *chat.Session)
	Welcome(ctx context.Context, ssn *chat.Session)
	Chat(ctx context.Context, ssn *chat.Session, message string) error
	Messages(ctx context.Context, id types.SessionID) ([]*chat.Message, error)
	Profiles() []*chat.Profile
}
