package storage_test

import (
	"io"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/adapter/storage"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/test"
)

func TestClient(t *testing.T) {
	vars := test.NewEnvVars(t, "TEST_STORAGE_BUCKET")
	ctx := t.Context()

	client, err := storage.New(ctx, vars.Get("TEST_STORAGE_BUCKET"))
	gt.NoError(t, err).Required()
	defer client.Close(ctx)

	object := "bqchat-test/" + time.Now().Format("20060102150405") + "/data.json"

	w := client.PutObject(ctx, object)
	_, err = w.Write([]byte(`{"one":1}` + "\n"))
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Close()).Required()

	rc, err := client.GetObject(ctx, object)
	gt.NoError(t, err).Required()
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	gt.NoError(t, err)
	gt.V(t, string(data)).Equal(`{"one":1}` + "\n")

	_, err = client.GetObject(ctx, object+".missing")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagNotFound))
}
