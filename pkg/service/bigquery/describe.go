package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

// DescribeTable resolves raw against the configured defaults and returns the
// table's schema, partitioning and clustering. Every failure is returned as a
// *model.TableError.
func (x *Service) DescribeTable(ctx context.Context, raw string) model.DescribeResult {
	if x.client == nil {
		return model.NewTableError("%s", model.MsgClientNotInitialized)
	}

	id, err := model.ParseTableIdentifier(raw, x.defaults)
	if err != nil {
		logging.From(ctx).Debug("invalid table identifier", logging.ErrAttr(err))
		return model.NewTableError("Invalid table identifier format: %s", raw)
	}

	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	msg.Trace(ctx, "📋 Describing table `%s`", id)
	md, err := x.client.TableMetadata(ctx, id.ProjectID, id.DatasetID, id.TableID)
	if err != nil {
		logging.From(ctx).Warn("failed to describe table", "table_id", id.String(), logging.ErrAttr(err))
		return model.NewTableError("Failed to describe table %s: %s", id, rootMessage(err))
	}

	return &model.TableDescription{
		FullTableID:      id.String(),
		Schema:           convertSchema(md.Schema),
		Partitioning:     classifyPartitioning(md),
		ClusteringFields: clusteringFields(md),
	}
}

func convertSchema(schema bigquery.Schema) []model.SchemaField {
	fields := make([]model.SchemaField, 0, len(schema))
	for _, f := range schema {
		if f == nil {
			continue
		}
		fields = append(fields, model.SchemaField{
			Name:        f.Name,
			Type:        string(f.Type),
			Mode:        model.NewFieldMode(f.Required, f.Repeated),
			Description: f.Description,
		})
	}
	return fields
}

// classifyPartitioning picks TIME over RANGE when metadata carries both.
func classifyPartitioning(md *bigquery.TableMetadata) *model.PartitioningInfo {
	switch {
	case md.TimePartitioning != nil:
		granularity := string(md.TimePartitioning.Type)
		if granularity == "" {
			granularity = string(bigquery.DayPartitioningType)
		}
		return model.NewTimePartitioning(md.TimePartitioning.Field, granularity)
	case md.RangePartitioning != nil:
		return model.NewRangePartitioning(md.RangePartitioning.Field)
	default:
		return nil
	}
}

func clusteringFields(md *bigquery.TableMetadata) []string {
	if md.Clustering == nil || len(md.Clustering.Fields) == 0 {
		return nil
	}
	return append([]string{}, md.Clustering.Fields...)
}
