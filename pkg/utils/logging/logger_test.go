package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
)

func TestLoggerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
	logger.Info("hello",
		slog.String("secret_token", "xxx"),
		slog.String("table", "p.d.t"),
	)

	gt.S(t, buf.String()).Contains("p.d.t").NotContains("xxx")
}

func TestParseFormatAndLevel(t *testing.T) {
	f, err := logging.ParseFormat("JSON")
	gt.NoError(t, err)
	gt.V(t, f).Equal(logging.FormatJSON)

	_, err = logging.ParseFormat("xml")
	gt.Error(t, err)

	l, err := logging.ParseLevel("warn")
	gt.NoError(t, err)
	gt.V(t, l).Equal(slog.LevelWarn)

	_, err = logging.ParseLevel("verbose")
	gt.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelDebug, logging.FormatJSON, false)
	ctx := logging.With(t.Context(), logger)

	logging.From(ctx).Debug("from context")
	gt.S(t, buf.String()).Contains("from context")

	gt.V(t, logging.From(t.Context())).Equal(logging.Default())
}
