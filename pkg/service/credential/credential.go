package credential

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

const ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"

type Kind string

const (
	KindDefault      Kind = "default"
	KindImpersonated Kind = "impersonated"
)

// Credentials is the identity used for Google Cloud API calls.
type Credentials struct {
	Kind        Kind
	ProjectID   string
	Principal   string
	TokenSource oauth2.TokenSource
}

func (x *Credentials) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithTokenSource(x.TokenSource)}
}

func (x *Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(x.Kind)),
		slog.String("project_id", x.ProjectID),
		slog.String("principal", x.Principal),
	)
}

// DefaultFinder looks up application default credentials.
type DefaultFinder func(ctx context.Context, scopes ...string) (*google.Credentials, error)

// Impersonator mints a token source acting as target on behalf of base.
type Impersonator func(ctx context.Context, base *google.Credentials, target string, scopes []string) (oauth2.TokenSource, error)

type Resolver struct {
	target      string
	findDefault DefaultFinder
	impersonate Impersonator
}

type Option func(*Resolver)

func WithDefaultFinder(f DefaultFinder) Option {
	return func(r *Resolver) {
		r.findDefault = f
	}
}

func WithImpersonator(f Impersonator) Option {
	return func(r *Resolver) {
		r.impersonate = f
	}
}

// New creates a resolver. An empty target disables impersonation.
func New(target string, opts ...Option) *Resolver {
	r := &Resolver{
		target:      target,
		findDefault: google.FindDefaultCredentials,
		impersonate: impersonateTokenSource,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func impersonateTokenSource(ctx context.Context, base *google.Credentials, target string, scopes []string) (oauth2.TokenSource, error) {
	return impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
		TargetPrincipal: target,
		Scopes:          scopes,
	}, option.WithCredentials(base))
}

// Resolve returns impersonated credentials when a target is configured and
// minting succeeds, otherwise the default credentials.
func (x *Resolver) Resolve(ctx context.Context, scopes []string) (*Credentials, error) {
	if len(scopes) == 0 {
		scopes = []string{ScopeCloudPlatform}
	}

	base, err := x.findDefault(ctx, scopes...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find default credentials",
			goerr.V("scopes", scopes),
			goerr.T(errs.TagExternal))
	}

	fallback := &Credentials{
		Kind:        KindDefault,
		ProjectID:   base.ProjectID,
		TokenSource: base.TokenSource,
	}

	if x.target == "" {
		return fallback, nil
	}

	ts, err := x.impersonate(ctx, base, x.target, scopes)
	if err != nil {
		logging.From(ctx).Warn("failed to impersonate service account, falling back to default credentials",
			"target", x.target,
			logging.ErrAttr(err))
		return fallback, nil
	}

	// Impersonated token sources only call IAM on the first Token().
	tok, err := ts.Token()
	if err != nil {
		logging.From(ctx).Warn("failed to mint impersonated token, falling back to default credentials",
			"target", x.target,
			logging.ErrAttr(err))
		return fallback, nil
	}
	ts = oauth2.ReuseTokenSource(tok, ts)

	logging.From(ctx).Info("using impersonated credentials", "target", x.target)
	return &Credentials{
		Kind:        KindImpersonated,
		ProjectID:   base.ProjectID,
		Principal:   x.target,
		TokenSource: ts,
	}, nil
}
