package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/domain/types"
	"github.com/secmon-lab/bqchat/pkg/repository/memory"
	bqsvc "github.com/secmon-lab/bqchat/pkg/service/bigquery"
	"github.com/secmon-lab/bqchat/pkg/service/storage"
)

// ServiceFactory builds the BigQuery service owned by one chat session.
type ServiceFactory func(ctx context.Context) *bqsvc.Service

type UseCases struct {
	// services and adapters
	llmClient      gollem.LLMClient
	repository     interfaces.Repository
	historyStorage *storage.Service
	newService     ServiceFactory

	// configs
	profiles     []*chat.Profile
	systemPrompt string
	queryTimeout time.Duration
	idleTimeout  time.Duration

	mu       sync.Mutex
	sessions map[types.SessionID]*runtime
}

var _ interfaces.ChatUseCases = &UseCases{}

type Option func(*UseCases)

func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(u *UseCases) {
		u.llmClient = llmClient
	}
}

func WithRepository(repository interfaces.Repository) Option {
	return func(u *UseCases) {
		u.repository = repository
	}
}

// WithHistoryStorage persists LLM history so that restored sessions keep their context.
func WithHistoryStorage(historyStorage *storage.Service) Option {
	return func(u *UseCases) {
		u.historyStorage = historyStorage
	}
}

func WithServiceFactory(factory ServiceFactory) Option {
	return func(u *UseCases) {
		u.newService = factory
	}
}

// WithProfiles replaces the built-in profiles. The first one is the default.
func WithProfiles(profiles []*chat.Profile) Option {
	return func(u *UseCases) {
		if len(profiles) > 0 {
			u.profiles = profiles
		}
	}
}

// WithSystemPrompt is used by agent and direct modes when the profile has no prompt of its own.
func WithSystemPrompt(prompt string) Option {
	return func(u *UseCases) {
		u.systemPrompt = prompt
	}
}

// WithQueryTimeout is told to the agent so that it can plan query size.
func WithQueryTimeout(d time.Duration) Option {
	return func(u *UseCases) {
		u.queryTimeout = d
	}
}

// DefaultSessionIdleTimeout is how long a session keeps its BigQuery client
// without a turn.
const DefaultSessionIdleTimeout = 30 * time.Minute

// WithSessionIdleTimeout sets when SweepIdleSessions closes a session runtime. 0 disables eviction.
func WithSessionIdleTimeout(d time.Duration) Option {
	return func(u *UseCases) {
		u.idleTimeout = d
	}
}

func New(opts ...Option) *UseCases {
	u := &UseCases{
		repository:   memory.New(),
		profiles:     chat.DefaultProfiles(),
		systemPrompt: defaultSystemPrompt,
		queryTimeout: bqsvc.DefaultTimeout,
		idleTimeout:  DefaultSessionIdleTimeout,
		sessions:     make(map[types.SessionID]*runtime),
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.newService == nil {
		u.newService = func(ctx context.Context) *bqsvc.Service {
			return bqsvc.New(ctx, func(ctx context.Context) (interfaces.BigQueryClient, error) {
				return nil, errs.ErrClientNotInitialized
			})
		}
	}

	return u
}

const defaultSystemPrompt = "You are a data assistant. Answer in the language of the user and keep answers short. " +
	"Render tabular answers as Markdown tables."

func (x *UseCases) Profiles() []*chat.Profile {
	return append([]*chat.Profile{}, x.profiles...)
}

// lookupProfile returns the default profile for an empty name.
func (x *UseCases) lookupProfile(name string) (*chat.Profile, error) {
	if name == "" {
		return x.profiles[0], nil
	}
	for _, p := range x.profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, goerr.Wrap(errs.ErrProfileNotFound, "unknown chat profile",
		goerr.TV(errs.ProfileKey, name),
		goerr.T(errs.TagNotFound))
}
