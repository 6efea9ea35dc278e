package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
	"google.golang.org/api/iterator"
)

// ExecuteQuery runs sql as given and materializes every row. The statement is
// not inspected; bounding the result is left to the caller's LIMIT clause.
func (x *Service) ExecuteQuery(ctx context.Context, sql string) model.QueryResult {
	if x.client == nil {
		return model.NewQueryError("Error: %s", model.MsgClientNotInitialized)
	}

	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	msg.Trace(ctx, "📝 Running query\n```sql\n%s\n```", sql)
	rows, err := x.runQuery(ctx, sql)
	if err != nil {
		logging.From(ctx).Warn("query execution failed", logging.ErrAttr(err))
		return model.NewQueryError("An error occurred during query execution: %s", rootMessage(err))
	}

	if x.archive != nil {
		x.archive.save(ctx, sql, rows)
	}

	return rows
}

func (x *Service) runQuery(ctx context.Context, sql string) (*model.QueryRows, error) {
	job, err := x.client.Query(sql).Run(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run query", goerr.TV(errs.QueryKey, sql), goerr.T(errs.TagExternal))
	}

	stats, err := job.Wait(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to wait for query job",
			goerr.TV(errs.QueryKey, sql),
			goerr.V("job_id", job.ID()),
			goerr.T(errs.TagExternal))
	}

	it, err := job.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read query results",
			goerr.V("job_id", job.ID()),
			goerr.T(errs.TagExternal))
	}

	result := &model.QueryRows{JobID: job.ID()}
	if stats != nil {
		result.TotalBytesProcessed = stats.TotalBytesProcessed
	}

	for {
		var row []bigquery.Value
		if err := it.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, goerr.Wrap(err, "failed to iterate query results",
				goerr.V("job_id", job.ID()),
				goerr.V("rows_read", len(result.Rows)),
				goerr.T(errs.TagExternal))
		}

		schema := it.Schema()
		values := make([]any, len(row))
		for i, v := range row {
			var field *bigquery.FieldSchema
			if i < len(schema) {
				field = schema[i]
			}
			values[i] = convertValue(v, field)
		}
		result.Rows = append(result.Rows, values)
	}

	// The iterator schema is populated after the first Next call.
	result.Columns = convertColumns(it.Schema())

	logging.From(ctx).Debug("query executed",
		"job_id", result.JobID,
		"rows", len(result.Rows),
		"bytes_processed", result.TotalBytesProcessed)
	return result, nil
}
