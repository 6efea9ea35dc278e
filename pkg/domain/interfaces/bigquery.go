package interfaces

import (
	"context"

	"cloud.google.com/go/bigquery"
)

// BigQueryClient is the subset of BigQuery operations used by the access service.
type BigQueryClient interface {
	ProjectLister
	ListDatasets(ctx context.Context, projectID string) ([]string, error)
	ListTables(ctx context.Context, projectID, datasetID string) ([]string, error)
	TableMetadata(ctx context.Context, projectID, datasetID, tableID string) (*bigquery.TableMetadata, error)
	Query(sql string) BigQueryQuery
	Close() error
}

// ProjectLister returns IDs of the projects visible to the caller identity.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

type BigQueryQuery interface {
	Run(ctx context.Context) (BigQueryJob, error)
}

type BigQueryJob interface {
	ID() string
	// Wait blocks until the job is done. A failed job is reported as an error.
	Wait(ctx context.Context) (*bigquery.JobStatistics, error)
	Read(ctx context.Context) (BigQueryRowIterator, error)
}

type BigQueryRowIterator interface {
	Next(dst any) error
	Schema() bigquery.Schema
}
