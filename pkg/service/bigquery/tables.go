package bigquery

import (
	"context"

	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
)

// ListAccessibleTables enumerates project.dataset.table for every table the
// client identity can see. Only a failure to list projects aborts; dataset and
// table listing failures are logged and skipped.
func (x *Service) ListAccessibleTables(ctx context.Context) *model.TableList {
	if x.client == nil {
		return model.NewTableListError("Error: " + model.MsgClientNotInitialized)
	}

	ctx, cancel := x.withTimeout(ctx)
	defer cancel()

	msg.Trace(ctx, "🔎 Listing accessible BigQuery projects")
	projects, err := x.client.ListProjects(ctx)
	if err != nil {
		logging.From(ctx).Error("failed to list projects", logging.ErrAttr(err))
		return model.NewTableListError("Error listing tables: " + rootMessage(err))
	}

	var tables []string
	for _, projectID := range projects {
		datasets, err := x.client.ListDatasets(ctx, projectID)
		if err != nil {
			logging.From(ctx).Warn("skip project, failed to list datasets",
				"project_id", projectID,
				logging.ErrAttr(err))
			continue
		}

		for _, datasetID := range datasets {
			ids, err := x.client.ListTables(ctx, projectID, datasetID)
			if err != nil {
				logging.From(ctx).Warn("skip dataset, failed to list tables",
					"project_id", projectID,
					"dataset_id", datasetID,
					logging.ErrAttr(err))
				continue
			}

			for _, tableID := range ids {
				tables = append(tables, model.TableIdentifier{
					ProjectID: projectID,
					DatasetID: datasetID,
					TableID:   tableID,
				}.String())
			}
		}
	}

	logging.From(ctx).Debug("listed accessible tables",
		"projects", len(projects),
		"tables", len(tables))
	return model.NewTableList(tables)
}
