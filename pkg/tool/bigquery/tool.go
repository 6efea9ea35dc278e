package bigquery

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

const (
	NameListTables    = "bigquery_list_tables"
	NameDescribeTable = "bigquery_describe_table"
	NameExecuteQuery  = "bigquery_execute_query"
)

// Service is the BigQuery access consumed by the tool set.
type Service interface {
	ListAccessibleTables(ctx context.Context) *model.TableList
	DescribeTable(ctx context.Context, raw string) model.DescribeResult
	ExecuteQuery(ctx context.Context, sql string) model.QueryResult
	Defaults() model.Defaults
}

// Tool exposes one session's BigQuery service to an LLM agent.
type Tool struct {
	svc     Service
	timeout time.Duration
}

var _ gollem.ToolSet = (*Tool)(nil)

type Option func(*Tool)

// WithQueryTimeout is mentioned in the query tool description.
func WithQueryTimeout(d time.Duration) Option {
	return func(t *Tool) {
		t.timeout = d
	}
}

func New(svc Service, opts ...Option) *Tool {
	t := &Tool{svc: svc}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (x *Tool) ID() string {
	return "bigquery"
}

func (x *Tool) Specs(ctx context.Context) ([]gollem.ToolSpec, error) {
	var timeout string
	if x.timeout > 0 {
		timeout = x.timeout.String()
	}
	queryDesc, err := render(executeQueryPromptTmpl, struct{ Timeout string }{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	return []gollem.ToolSpec{
		{
			Name:        NameListTables,
			Description: "List every BigQuery table accessible to the current identity as project.dataset.table",
			Parameters:  map[string]*gollem.Parameter{},
		},
		{
			Name:        NameDescribeTable,
			Description: "Get schema, partitioning and clustering of a BigQuery table",
			Parameters: map[string]*gollem.Parameter{
				"table_id": {
					Type:        gollem.TypeString,
					Description: "Table identifier: `table`, `dataset.table` or `project.dataset.table`",
					Required:    true,
				},
			},
		},
		{
			Name:        NameExecuteQuery,
			Description: queryDesc,
			Parameters: map[string]*gollem.Parameter{
				"query": {
					Type:        gollem.TypeString,
					Description: "The SQL query to execute",
					Required:    true,
				},
			},
		},
	}, nil
}

// Prompt returns instructions to append to the agent system prompt.
func (x *Tool) Prompt(ctx context.Context) (string, error) {
	return render(systemPromptTmpl, x.svc.Defaults())
}

func (x *Tool) Run(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	logging.From(ctx).Debug("run bigquery tool", "name", name, "args", args)

	switch name {
	case NameListTables:
		msg.Trace(ctx, "🔧 Listing accessible tables")
		return listResult(x.svc.ListAccessibleTables(ctx)), nil

	case NameDescribeTable:
		tableID, err := stringArg(args, "table_id")
		if err != nil {
			return nil, err
		}
		msg.Trace(ctx, "🔧 Describing `%s`", tableID)
		return describeResult(x.svc.DescribeTable(ctx, tableID)), nil

	case NameExecuteQuery:
		query, err := stringArg(args, "query")
		if err != nil {
			return nil, err
		}
		return queryResult(x.svc.ExecuteQuery(ctx, query))

	default:
		return nil, goerr.New("unknown function", goerr.V("name", name), goerr.T(errs.TagValidation))
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", goerr.New(key+" parameter is required", goerr.V("args", args), goerr.T(errs.TagValidation))
	}
	return v, nil
}

func listResult(list *model.TableList) map[string]any {
	switch {
	case list.IsError():
		return map[string]any{"error": list.String()}
	case list.IsEmpty():
		return map[string]any{"tables": []string{}, "message": list.String()}
	default:
		return map[string]any{"tables": list.Entries, "total": len(list.Entries)}
	}
}

func describeResult(result model.DescribeResult) map[string]any {
	switch v := result.(type) {
	case *model.TableDescription:
		out := map[string]any{
			"table_id":    v.FullTableID,
			"description": v.String(),
		}
		if len(v.ClusteringFields) > 0 {
			out["clustering_fields"] = v.ClusteringFields
		}
		if v.Partitioning != nil {
			out["partitioning"] = map[string]any{
				"type":        string(v.Partitioning.Type),
				"field":       v.Partitioning.Field,
				"granularity": v.Partitioning.Granularity,
			}
		}
		return out
	default:
		return map[string]any{"error": result.String()}
	}
}

func queryResult(result model.QueryResult) (map[string]any, error) {
	rows, ok := result.(*model.QueryRows)
	if !ok {
		return map[string]any{"error": result.String()}, nil
	}

	// Rows go out as a JSON string; nested BigQuery values do not survive
	// the function response schema of every provider.
	raw, err := json.Marshal(rows.Records())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal query rows", goerr.V("job_id", rows.JobID))
	}

	columns := make([]map[string]any, len(rows.Columns))
	for i, c := range rows.Columns {
		columns[i] = map[string]any{"name": c.Name, "type": c.Type}
	}

	return map[string]any{
		"job_id":                rows.JobID,
		"columns":               columns,
		"rows_json":             string(raw),
		"total_rows":            len(rows.Rows),
		"total_bytes_processed": rows.TotalBytesProcessed,
	}, nil
}

func (x *Tool) LogValue() slog.Value {
	d := x.svc.Defaults()
	return slog.GroupValue(
		slog.String("default_project", d.ProjectID),
		slog.String("default_dataset", d.DatasetID),
		slog.Duration("timeout", x.timeout),
	)
}
