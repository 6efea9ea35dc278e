package bigquery_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
)

func TestTableList(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		list := bigquery.NewTableList([]string{"p.d.a", "p.d.b"})
		gt.V(t, list.Kind).Equal(bigquery.TableListFound)
		gt.S(t, list.String()).Contains("**Accessible tables (2):**").Contains("- `p.d.b`")
	})

	t.Run("empty is a status, not an error", func(t *testing.T) {
		list := bigquery.NewTableList(nil)
		gt.True(t, list.IsEmpty())
		gt.False(t, list.IsError())
		gt.A(t, list.Entries).Length(1)
		gt.V(t, list.String()).Equal("No accessible tables found.")
	})

	t.Run("error", func(t *testing.T) {
		list := bigquery.NewTableListError("Error listing tables: denied")
		gt.True(t, list.IsError())
		gt.A(t, list.Entries).Length(1)
		gt.V(t, list.String()).Equal("Error listing tables: denied")
	})
}

func TestTableListOverview(t *testing.T) {
	t.Run("grouped by project and dataset", func(t *testing.T) {
		list := bigquery.NewTableList([]string{"q.logs.b", "p.mart.sales", "q.logs.a", "p.raw.events"})
		got := list.Overview()

		gt.S(t, got).
			Contains("**Available schemas (4 tables):**").
			Contains("### Project `p`\n\n#### Dataset `mart`\n- `sales`\n").
			Contains("#### Dataset `raw`\n- `events`\n").
			Contains("### Project `q`\n\n#### Dataset `logs`\n- `a`\n- `b`\n").
			Contains("show schema for project.dataset.table")
		gt.True(t, strings.Index(got, "Project `p`") < strings.Index(got, "Project `q`"))
	})

	t.Run("status lines are kept", func(t *testing.T) {
		gt.V(t, bigquery.NewTableList(nil).Overview()).Equal("No accessible tables found.")
		gt.V(t, bigquery.NewTableListError("Error listing tables: denied").Overview()).
			Equal("Error listing tables: denied")
	})
}
