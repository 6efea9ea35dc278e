package bigquery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

const DefaultTimeout = 5 * time.Minute

// ClientFactory creates the BigQuery client owned by a Service.
type ClientFactory func(ctx context.Context) (interfaces.BigQueryClient, error)

// Service answers table listing, table description and query requests. A
// Service belongs to one chat session; it is not shared between sessions.
type Service struct {
	client   interfaces.BigQueryClient
	initErr  error
	defaults model.Defaults
	timeout  time.Duration
	archive  *archive
}

type Option func(*Service)

// WithDefaults sets the project and dataset used when a table identifier omits them.
func WithDefaults(projectID, datasetID string) Option {
	return func(s *Service) {
		s.defaults = model.NewDefaults(projectID, datasetID)
	}
}

// WithTimeout bounds every remote operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithResultStorage archives successful query results under prefix.
func WithResultStorage(storage interfaces.StorageClient, prefix string) Option {
	return func(s *Service) {
		if storage != nil {
			s.archive = &archive{storage: storage, prefix: prefix}
		}
	}
}

// New builds a Service. A factory failure does not fail construction: it is
// kept and every operation reports the client as not initialized.
func New(ctx context.Context, factory ClientFactory, opts ...Option) *Service {
	s := &Service{
		defaults: model.NewDefaults("", ""),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := factory(ctx)
	switch {
	case err != nil:
		s.initErr = err
		logging.From(ctx).Error("failed to initialize BigQuery client", logging.ErrAttr(err))
	case client == nil:
		logging.From(ctx).Error("BigQuery client factory returned no client")
	default:
		s.client = client
	}

	return s
}

// InitErr returns the error recorded while creating the client, if any.
func (x *Service) InitErr() error {
	return x.initErr
}

func (x *Service) Defaults() model.Defaults {
	return x.defaults
}

func (x *Service) Close() error {
	if x.client == nil {
		return nil
	}
	return x.client.Close()
}

func (x *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if x.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, x.timeout)
}

func (x *Service) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("initialized", x.client != nil),
		slog.String("default_project", x.defaults.ProjectID),
		slog.String("default_dataset", x.defaults.DatasetID),
		slog.Duration("timeout", x.timeout),
		slog.Bool("archive", x.archive != nil),
	)
}

// rootMessage strips wrapping so the user sees the API's own message.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
