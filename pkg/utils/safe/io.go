package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", logging.ErrAttr(err))
	}
}

// Write writes data to w and logs a failure instead of returning it.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write", logging.ErrAttr(err))
	}
}
