package bigquery

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
)

// MockResult is the canned outcome of a query run against Mock.
type MockResult struct {
	Schema              bigquery.Schema
	Rows                [][]bigquery.Value
	TotalBytesProcessed int64
	// JobErr is returned from Wait as a failed job.
	JobErr error
}

// Mock is an in-memory interfaces.BigQueryClient for tests and local runs.
//
// Errors keys:
//   - "list_projects"
//   - "list_datasets/<project>"
//   - "list_tables/<project>.<dataset>"
//   - "metadata/<project>.<dataset>.<table>"
//   - "query_run", "job_wait", "job_read", "close"
type Mock struct {
	Projects []string
	// Datasets maps project to dataset IDs.
	Datasets map[string][]string
	// Tables maps "project.dataset" to table IDs.
	Tables map[string][]string
	// Metadata maps "project.dataset.table" to its metadata.
	Metadata map[string]*bigquery.TableMetadata
	// Results maps SQL text to its result.
	Results map[string]*MockResult
	Errors  map[string]error

	mu      sync.Mutex
	calls   []string
	queries []string
	closed  bool
}

var _ interfaces.BigQueryClient = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{
		Datasets: make(map[string][]string),
		Tables:   make(map[string][]string),
		Metadata: make(map[string]*bigquery.TableMetadata),
		Results:  make(map[string]*MockResult),
		Errors:   make(map[string]error),
	}
}

// AddTable registers a table and its metadata, creating the project and dataset as needed.
func (x *Mock) AddTable(projectID, datasetID, tableID string, md *bigquery.TableMetadata) {
	if !contains(x.Projects, projectID) {
		x.Projects = append(x.Projects, projectID)
	}
	if !contains(x.Datasets[projectID], datasetID) {
		x.Datasets[projectID] = append(x.Datasets[projectID], datasetID)
	}
	key := projectID + "." + datasetID
	x.Tables[key] = append(x.Tables[key], tableID)
	if md != nil {
		x.Metadata[key+"."+tableID] = md
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (x *Mock) record(call string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, call)
	return x.Errors[call]
}

// Calls returns the operations invoked so far, in order, using the Errors key format.
func (x *Mock) Calls() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string{}, x.calls...)
}

// ExecutedQueries returns the SQL texts passed to Query(...).Run.
func (x *Mock) ExecutedQueries() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string{}, x.queries...)
}

func (x *Mock) Closed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.closed
}

func (x *Mock) ListProjects(ctx context.Context) ([]string, error) {
	if err := x.record("list_projects"); err != nil {
		return nil, err
	}
	return x.Projects, nil
}

func (x *Mock) ListDatasets(ctx context.Context, projectID string) ([]string, error) {
	if err := x.record("list_datasets/" + projectID); err != nil {
		return nil, err
	}
	return x.Datasets[projectID], nil
}

func (x *Mock) ListTables(ctx context.Context, projectID, datasetID string) ([]string, error) {
	if err := x.record("list_tables/" + projectID + "." + datasetID); err != nil {
		return nil, err
	}
	return x.Tables[projectID+"."+datasetID], nil
}

func (x *Mock) TableMetadata(ctx context.Context, projectID, datasetID, tableID string) (*bigquery.TableMetadata, error) {
	key := fmt.Sprintf("%s.%s.%s", projectID, datasetID, tableID)
	if err := x.record("metadata/" + key); err != nil {
		return nil, err
	}
	md, ok := x.Metadata[key]
	if !ok {
		return nil, goerr.New("Not found: Table " + key)
	}
	return md, nil
}

func (x *Mock) Query(sql string) interfaces.BigQueryQuery {
	return &mockQuery{client: x, sql: sql}
}

func (x *Mock) Close() error {
	if err := x.record("close"); err != nil {
		return err
	}
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()
	return nil
}

type mockQuery struct {
	client *Mock
	sql    string
}

func (q *mockQuery) Run(ctx context.Context) (interfaces.BigQueryJob, error) {
	if err := q.client.record("query_run"); err != nil {
		return nil, err
	}

	q.client.mu.Lock()
	q.client.queries = append(q.client.queries, q.sql)
	n := len(q.client.queries)
	q.client.mu.Unlock()

	result, ok := q.client.Results[q.sql]
	if !ok {
		result = &MockResult{}
	}
	return &mockJob{client: q.client, id: fmt.Sprintf("mock-job-%d", n), result: result}, nil
}

type mockJob struct {
	client *Mock
	id     string
	result *MockResult
}

func (j *mockJob) ID() string { return j.id }

func (j *mockJob) Wait(ctx context.Context) (*bigquery.JobStatistics, error) {
	if err := j.client.record("job_wait"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if j.result.JobErr != nil {
		return nil, j.result.JobErr
	}
	return &bigquery.JobStatistics{TotalBytesProcessed: j.result.TotalBytesProcessed}, nil
}

func (j *mockJob) Read(ctx context.Context) (interfaces.BigQueryRowIterator, error) {
	if err := j.client.record("job_read"); err != nil {
		return nil, err
	}
	return &mockRowIterator{rows: j.result.Rows, schema: j.result.Schema}, nil
}

type mockRowIterator struct {
	rows   [][]bigquery.Value
	schema bigquery.Schema
	index  int
}

func (r *mockRowIterator) Next(dst any) error {
	if r.index >= len(r.rows) {
		return iterator.Done
	}

	v, ok := dst.(*[]bigquery.Value)
	if !ok {
		return goerr.New("unsupported destination type", goerr.V("type", fmt.Sprintf("%T", dst)))
	}
	*v = r.rows[r.index]
	r.index++
	return nil
}

func (r *mockRowIterator) Schema() bigquery.Schema {
	return r.schema
}
