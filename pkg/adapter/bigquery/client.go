package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client implements interfaces.BigQueryClient over cloud.google.com/go/bigquery.
type Client struct {
	client *bigquery.Client
	lister interfaces.ProjectLister
}

var _ interfaces.BigQueryClient = (*Client)(nil)

// New creates a client billed to billingProject. An empty billingProject is
// detected from the credentials.
func New(ctx context.Context, billingProject string, lister interfaces.ProjectLister, opts ...option.ClientOption) (*Client, error) {
	if billingProject == "" {
		billingProject = bigquery.DetectProjectID
	}

	client, err := bigquery.NewClient(ctx, billingProject, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client",
			goerr.V("project_id", billingProject),
			goerr.T(errs.TagExternal))
	}

	return &Client{client: client, lister: lister}, nil
}

func (x *Client) ListProjects(ctx context.Context) ([]string, error) {
	if x.lister == nil {
		return nil, goerr.New("project lister is not configured", goerr.T(errs.TagInternal))
	}
	return x.lister.ListProjects(ctx)
}

func (x *Client) ListDatasets(ctx context.Context, projectID string) ([]string, error) {
	it := x.client.Datasets(ctx)
	it.ProjectID = projectID

	var datasets []string
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list datasets",
				goerr.V("project_id", projectID),
				goerr.T(errs.TagExternal))
		}
		datasets = append(datasets, ds.DatasetID)
	}
	return datasets, nil
}

func (x *Client) ListTables(ctx context.Context, projectID, datasetID string) ([]string, error) {
	it := x.client.DatasetInProject(projectID, datasetID).Tables(ctx)

	var tables []string
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list tables",
				goerr.V("project_id", projectID),
				goerr.V("dataset_id", datasetID),
				goerr.T(errs.TagExternal))
		}
		tables = append(tables, t.TableID)
	}
	return tables, nil
}

func (x *Client) TableMetadata(ctx context.Context, projectID, datasetID, tableID string) (*bigquery.TableMetadata, error) {
	md, err := x.client.DatasetInProject(projectID, datasetID).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get table metadata",
			goerr.V("project_id", projectID),
			goerr.V("dataset_id", datasetID),
			goerr.V("table_id", tableID),
			goerr.T(errs.TagExternal))
	}
	return md, nil
}

func (x *Client) Query(sql string) interfaces.BigQueryQuery {
	return &query{query: x.client.Query(sql)}
}

func (x *Client) Close() error {
	return x.client.Close()
}

type query struct {
	query *bigquery.Query
}

func (q *query) Run(ctx context.Context) (interfaces.BigQueryJob, error) {
	j, err := q.query.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &job{job: j}, nil
}

type job struct {
	job *bigquery.Job
}

func (j *job) ID() string {
	return j.job.ID()
}

func (j *job) Wait(ctx context.Context) (*bigquery.JobStatistics, error) {
	status, err := j.job.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if err := status.Err(); err != nil {
		return nil, err
	}
	return status.Statistics, nil
}

func (j *job) Read(ctx context.Context) (interfaces.BigQueryRowIterator, error) {
	it, err := j.job.Read(ctx)
	if err != nil {
		return nil, err
	}
	return &rowIterator{iter: it}, nil
}

type rowIterator struct {
	iter *bigquery.RowIterator
}

func (r *rowIterator) Next(dst any) error {
	return r.iter.Next(dst)
}

func (r *rowIterator) Schema() bigquery.Schema {
	return r.iter.Schema
}
