package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"google.golang.org/api/option"
)

// Client stores query result archives in one Cloud Storage bucket.
type Client struct {
	client *storage.Client
	bucket string
}

var _ interfaces.StorageClient = &Client{}

func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Client, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client",
			goerr.V("bucket", bucket),
			goerr.T(errs.TagExternal))
	}

	return &Client{
		client: client,
		bucket: bucket,
	}, nil
}

func (x *Client) PutObject(ctx context.Context, object string) io.WriteCloser {
	w := x.client.Bucket(x.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

func (x *Client) GetObject(ctx context.Context, object string) (io.ReadCloser, error) {
	rc, err := x.client.Bucket(x.bucket).Object(object).NewReader(ctx)
	if err != nil {
		tags := []goerr.Option{goerr.V("bucket", x.bucket), goerr.V("object", object)}
		if errors.Is(err, storage.ErrObjectNotExist) {
			tags = append(tags, goerr.T(errs.TagNotFound))
		} else {
			tags = append(tags, goerr.T(errs.TagExternal))
		}
		return nil, goerr.Wrap(err, "failed to read object", tags...)
	}

	return rc, nil
}

func (x *Client) Close(ctx context.Context) {
	if err := x.client.Close(); err != nil {
		logging.From(ctx).Warn("failed to close storage client", logging.ErrAttr(err))
	}
}
