package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/adapter/storage"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Storage keeps query result archives and LLM history in Cloud Storage.
type Storage struct {
	bucket    string
	prefix    string
	projectID string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for query results and chat history",
			Category:    "Storage",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("BQCHAT_STORAGE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix, e.g. 'bqchat/'",
			Category:    "Storage",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("BQCHAT_STORAGE_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "storage-project-id",
			Usage:       "Quota project for Cloud Storage requests",
			Category:    "Storage",
			Destination: &x.projectID,
			Sources:     cli.EnvVars("BQCHAT_STORAGE_PROJECT_ID"),
		},
	}
}

func (x *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("project_id", x.projectID),
	)
}

func (x *Storage) Configure(ctx context.Context) (*storage.Client, error) {
	if x.bucket == "" {
		return nil, goerr.New("storage bucket is not set")
	}

	var opts []option.ClientOption
	if x.projectID != "" {
		opts = append(opts, option.WithQuotaProject(x.projectID))
	}

	return storage.New(ctx, x.bucket, opts...)
}

func (x *Storage) Prefix() string {
	return x.prefix
}

// IsConfigured returns true if Storage is configured
func (x *Storage) IsConfigured() bool {
	return x.bucket != ""
}
