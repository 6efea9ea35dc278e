package bigquery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

type archive struct {
	storage interfaces.StorageClient
	prefix  string
}

type archiveMetadata struct {
	JobID               string         `json:"job_id"`
	Query               string         `json:"query"`
	Columns             []model.Column `json:"columns"`
	TotalRows           int            `json:"total_rows"`
	TotalBytesProcessed int64          `json:"total_bytes_processed"`
}

func ResultDataPath(prefix, jobID string) string {
	return fmt.Sprintf("%sbigquery/%s/data.json", prefix, jobID)
}

func ResultMetadataPath(prefix, jobID string) string {
	return fmt.Sprintf("%sbigquery/%s/metadata.json", prefix, jobID)
}

// save never fails the query; errors are only logged.
func (x *archive) save(ctx context.Context, sql string, rows *model.QueryRows) {
	jobID := rows.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	if err := x.write(ctx, ResultDataPath(x.prefix, jobID), func(enc *json.Encoder) error {
		for _, rec := range rows.Records() {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		logging.From(ctx).Warn("failed to archive query result", "job_id", jobID, logging.ErrAttr(err))
		return
	}

	meta := archiveMetadata{
		JobID:               jobID,
		Query:               sql,
		Columns:             rows.Columns,
		TotalRows:           len(rows.Rows),
		TotalBytesProcessed: rows.TotalBytesProcessed,
	}
	if err := x.write(ctx, ResultMetadataPath(x.prefix, jobID), func(enc *json.Encoder) error {
		return enc.Encode(meta)
	}); err != nil {
		logging.From(ctx).Warn("failed to archive query metadata", "job_id", jobID, logging.ErrAttr(err))
		return
	}

	logging.From(ctx).Debug("archived query result", "job_id", jobID, "rows", len(rows.Rows))
}

func (x *archive) write(ctx context.Context, object string, encode func(*json.Encoder) error) error {
	w := x.storage.PutObject(ctx, object)
	if err := encode(json.NewEncoder(w)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode archive object", goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close archive object", goerr.V("object", object))
	}
	return nil
}
