package config

import (
	"context"
	"log/slog"
	"time"

	bqadapter "github.com/secmon-lab/bqchat/pkg/adapter/bigquery"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	bqsvc "github.com/secmon-lab/bqchat/pkg/service/bigquery"
	"github.com/secmon-lab/bqchat/pkg/service/credential"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type BigQuery struct {
	impersonate    string
	projectID      string
	defaultProject string
	defaultDataset string
	timeout        time.Duration
	projectLister  string
}

func (x *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-impersonate-service-account",
			Usage:       "Service account to impersonate. Default credentials are used when impersonation fails",
			Category:    "BigQuery",
			Destination: &x.impersonate,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_IMPERSONATE_SERVICE_ACCOUNT", "GOOGLE_IMPERSONATE_SERVICE_ACCOUNT"),
		},
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "Project billed for queries. Taken from the credentials when empty",
			Category:    "BigQuery",
			Destination: &x.projectID,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-default-project",
			Usage:       "Project used when a table identifier omits it",
			Category:    "BigQuery",
			Value:       model.DefaultProjectID,
			Destination: &x.defaultProject,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_DEFAULT_PROJECT"),
		},
		&cli.StringFlag{
			Name:        "bigquery-default-dataset",
			Usage:       "Dataset used when a table identifier omits it",
			Category:    "BigQuery",
			Value:       model.DefaultDatasetID,
			Destination: &x.defaultDataset,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_DEFAULT_DATASET"),
		},
		&cli.DurationFlag{
			Name:        "bigquery-timeout",
			Usage:       "Timeout of each BigQuery operation. 0 disables it",
			Category:    "BigQuery",
			Value:       bqsvc.DefaultTimeout,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "bigquery-project-lister",
			Usage:       "How to enumerate projects [bigquery|resourcemanager]",
			Category:    "BigQuery",
			Value:       bqadapter.ListerBigQuery,
			Destination: &x.projectLister,
			Sources:     cli.EnvVars("BQCHAT_BIGQUERY_PROJECT_LISTER"),
		},
	}
}

func (x BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("impersonate", x.impersonate),
		slog.String("project_id", x.projectID),
		slog.String("default_project", x.defaultProject),
		slog.String("default_dataset", x.defaultDataset),
		slog.Duration("timeout", x.timeout),
		slog.String("project_lister", x.projectLister),
	)
}

func (x *BigQuery) Timeout() time.Duration {
	return x.timeout
}

// NewClient resolves credentials and connects to BigQuery.
func (x *BigQuery) NewClient(ctx context.Context) (interfaces.BigQueryClient, error) {
	creds, err := credential.New(x.impersonate).Resolve(ctx, []string{credential.ScopeCloudPlatform})
	if err != nil {
		return nil, err
	}
	logging.From(ctx).Debug("BigQuery credentials resolved", "credentials", creds)

	opts := creds.ClientOptions()
	lister, err := bqadapter.NewProjectLister(ctx, x.projectLister, opts...)
	if err != nil {
		return nil, err
	}

	billing := x.projectID
	if billing == "" {
		billing = creds.ProjectID
	}
	return bqadapter.New(ctx, billing, lister, opts...)
}

// ServiceFactory builds one BigQuery service per chat session. storage may be
// nil to disable the query result archive.
func (x *BigQuery) ServiceFactory(storage interfaces.StorageClient, prefix string) func(ctx context.Context) *bqsvc.Service {
	return func(ctx context.Context) *bqsvc.Service {
		return bqsvc.New(ctx, x.NewClient,
			bqsvc.WithDefaults(x.defaultProject, x.defaultDataset),
			bqsvc.WithTimeout(x.timeout),
			bqsvc.WithResultStorage(storage, prefix),
		)
	}
}
