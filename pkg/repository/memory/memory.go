package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
)

// Memory keeps sessions and messages in process memory. It is the default
// repository for the CLI and for tests.
type Memory struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*chat.Session
	messages map[types.SessionID][]*chat.Message
	eb       *goerr.Builder
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		sessions: make(map[types.SessionID]*chat.Session),
		messages: make(map[types.SessionID][]*chat.Message),
		eb:       goerr.NewBuilder(goerr.TV(errs.RepositoryKey, "memory")),
	}
}

func (r *Memory) PutSession(ctx context.Context, ssn *chat.Session) error {
	if ssn == nil || ssn.ID == "" {
		return r.eb.New("session ID is required", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *ssn
	r.sessions[ssn.ID] = &copied
	return nil
}

func (r *Memory) GetSession(ctx context.Context, id types.SessionID) (*chat.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ssn, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *ssn
	return &copied, nil
}

func (r *Memory) PutMessage(ctx context.Context, message *chat.Message) error {
	if message == nil || message.SessionID == "" {
		return r.eb.New("session ID of message is required", goerr.T(errs.TagValidation))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *message
	r.messages[message.SessionID] = append(r.messages[message.SessionID], &copied)
	return nil
}

// GetMessages returns messages of the session in insertion order.
func (r *Memory) GetMessages(ctx context.Context, id types.SessionID) ([]*chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[id]
	messages := make([]*chat.Message, len(stored))
	for i, m := range stored {
		copied := *m
		messages[i] = &copied
	}
	return messages, nil
}
