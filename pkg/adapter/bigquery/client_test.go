package bigquery_test

import (
	"testing"

	bq "cloud.google.com/go/bigquery"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/adapter/bigquery"
	"github.com/secmon-lab/bqchat/pkg/service/credential"
	"github.com/secmon-lab/bqchat/pkg/utils/safe"
	"github.com/secmon-lab/bqchat/pkg/utils/test"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

func TestNewProjectLister(t *testing.T) {
	ctx := t.Context()

	l, err := bigquery.NewProjectLister(ctx, "", option.WithoutAuthentication())
	gt.NoError(t, err).Required()
	_, ok := l.(*bigquery.BigQueryProjectLister)
	gt.True(t, ok)

	l, err = bigquery.NewProjectLister(ctx, bigquery.ListerResourceManager, option.WithoutAuthentication())
	gt.NoError(t, err).Required()
	_, ok = l.(*bigquery.ResourceManagerProjectLister)
	gt.True(t, ok)

	_, err = bigquery.NewProjectLister(ctx, "asset-inventory")
	gt.Error(t, err)
}

func TestClientLive(t *testing.T) {
	vars := test.NewEnvVars(t, "TEST_BIGQUERY_PROJECT_ID", "TEST_BIGQUERY_DATASET_ID")
	ctx := t.Context()

	creds, err := credential.New("").Resolve(ctx, []string{credential.ScopeCloudPlatform})
	gt.NoError(t, err).Required()

	lister, err := bigquery.NewProjectLister(ctx, bigquery.ListerBigQuery, creds.ClientOptions()...)
	gt.NoError(t, err).Required()

	client, err := bigquery.New(ctx, vars.Get("TEST_BIGQUERY_PROJECT_ID"), lister, creds.ClientOptions()...)
	gt.NoError(t, err).Required()
	defer safe.Close(ctx, client)

	projects, err := client.ListProjects(ctx)
	gt.NoError(t, err)
	gt.A(t, projects).Longer(0)

	tables, err := client.ListTables(ctx, vars.Get("TEST_BIGQUERY_PROJECT_ID"), vars.Get("TEST_BIGQUERY_DATASET_ID"))
	gt.NoError(t, err)
	if len(tables) > 0 {
		md, err := client.TableMetadata(ctx, vars.Get("TEST_BIGQUERY_PROJECT_ID"), vars.Get("TEST_BIGQUERY_DATASET_ID"), tables[0])
		gt.NoError(t, err)
		gt.V(t, md).NotNil()
	}

	job, err := client.Query("SELECT 1 AS one").Run(ctx)
	gt.NoError(t, err).Required()
	stats, err := job.Wait(ctx)
	gt.NoError(t, err).Required()
	gt.V(t, stats).NotNil()

	it, err := job.Read(ctx)
	gt.NoError(t, err).Required()
	var row []bq.Value
	gt.NoError(t, it.Next(&row))
	gt.V(t, it.Schema()[0].Name).Equal("one")
	gt.V(t, it.Next(&row)).Equal(iterator.Done)
}
