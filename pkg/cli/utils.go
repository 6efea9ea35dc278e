package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/cli/config"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/service/storage"
	"github.com/secmon-lab/bqchat/pkg/usecase"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

// chatConfig gathers the configs shared by chat and serve.
type chatConfig struct {
	bigquery config.BigQuery
	llm      config.LLMCfg
	storage  config.Storage
	profile  config.Profile
}

func (x *chatConfig) Flags() []cli.Flag {
	return joinFlags(
		x.bigquery.Flags(),
		x.llm.Flags(),
		x.storage.Flags(),
		x.profile.Flags(),
	)
}

func (x chatConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("bigquery", x.bigquery),
		slog.Any("llm", x.llm),
		slog.Any("storage", x.storage),
		slog.Any("profile", x.profile),
	)
}

// storageClient returns nil without error when no bucket is configured.
func (x *chatConfig) storageClient(ctx context.Context) (interfaces.StorageClient, func(), error) {
	if !x.storage.IsConfigured() {
		logging.From(ctx).Debug("storage is not configured, query results and LLM history are not archived")
		return nil, func() {}, nil
	}

	client, err := x.storage.Configure(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	return client, func() { client.Close(ctx) }, nil
}

// buildUseCases wires the chat use cases. Call closer when done even if an
// error is returned.
func (x *chatConfig) buildUseCases(ctx context.Context, repo interfaces.Repository, profiles []*chat.Profile, extra ...usecase.Option) (*usecase.UseCases, func(), error) {
	llmClient, err := x.llm.Configure(ctx)
	if err != nil {
		return nil, func() {}, err
	}

	storageClient, closer, err := x.storageClient(ctx)
	if err != nil {
		return nil, closer, err
	}

	opts := []usecase.Option{
		usecase.WithLLMClient(llmClient),
		usecase.WithRepository(repo),
		usecase.WithProfiles(profiles),
		usecase.WithServiceFactory(x.bigquery.ServiceFactory(storageClient, x.storage.Prefix())),
		usecase.WithQueryTimeout(x.bigquery.Timeout()),
	}
	if storageClient != nil {
		opts = append(opts, usecase.WithHistoryStorage(storage.New(storageClient, storage.WithPrefix(x.storage.Prefix()))))
	}

	opts = append(opts, extra...)
	return usecase.New(opts...), closer, nil
}

// overrideMode replaces the mode of the selected profile and returns it as
// the only available profile.
func overrideMode(profiles []*chat.Profile, name string, mode chat.Mode) ([]*chat.Profile, error) {
	if len(profiles) == 0 {
		return nil, goerr.Wrap(errs.ErrProfileNotFound, "no profile available")
	}

	target := profiles[0]
	if name != "" {
		target = nil
		for _, p := range profiles {
			if p.Name == name {
				target = p
				break
			}
		}
		if target == nil {
			return nil, goerr.Wrap(errs.ErrProfileNotFound, "profile not found",
				goerr.TV(errs.ProfileKey, name),
				goerr.T(errs.TagNotFound))
		}
	}

	p := *target
	p.Mode = mode
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return []*chat.Profile{&p}, nil
}
