package bigquery

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
)

const (
	DefaultProjectID = "sandbox-shippeo-hackathon-cc0a"
	DefaultDatasetID = "mcp_read_only"
)

// Defaults are used for the components a table identifier omits.
type Defaults struct {
	ProjectID string
	DatasetID string
}

// NewDefaults fills empty values with DefaultProjectID and DefaultDatasetID.
func NewDefaults(projectID, datasetID string) Defaults {
	if projectID == "" {
		projectID = DefaultProjectID
	}
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	return Defaults{ProjectID: projectID, DatasetID: datasetID}
}

type TableIdentifier struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func (x TableIdentifier) String() string {
	return x.ProjectID + "." + x.DatasetID + "." + x.TableID
}

// ParseTableIdentifier resolves `table`, `dataset.table` or `project.dataset.table`.
// Missing leading components are taken from defaults. Any other number of
// segments is an error.
func ParseTableIdentifier(raw string, defaults Defaults) (TableIdentifier, error) {
	id := TableIdentifier{
		ProjectID: defaults.ProjectID,
		DatasetID: defaults.DatasetID,
	}

	var parts []string
	if raw != "" {
		parts = strings.Split(raw, ".")
	}

	switch len(parts) {
	case 1:
		id.TableID = parts[0]
	case 2:
		id.DatasetID, id.TableID = parts[0], parts[1]
	case 3:
		id.ProjectID, id.DatasetID, id.TableID = parts[0], parts[1], parts[2]
	default:
		return TableIdentifier{}, goerr.New("Invalid table identifier format: "+raw,
			goerr.TV(errs.TableIDKey, raw),
			goerr.V("segments", len(parts)),
			goerr.T(errs.TagValidation))
	}

	return id, nil
}
