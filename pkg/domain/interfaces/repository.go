package interfaces

import (
	"context"

	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
)

type Repository interface {
	PutSession(ctx context.Context, ssn *chat.Session) error
	// GetSession returns nil without error if the session does not exist.
	GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error)

	PutMessage(ctx context.Context, message *chat.Message) error
	GetMessages(ctx context.Context, id types.SessionID) ([]*chat.Message, error)
}
