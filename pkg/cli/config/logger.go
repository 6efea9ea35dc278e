package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level      string
	format     string
	output     string
	quiet      bool
	stacktrace bool
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Category:    "logging",
			Aliases:     []string{"l"},
			Sources:     cli.EnvVars("BQCHAT_LOG_LEVEL"),
			Usage:       "Set log level [debug|info|warn|error]",
			Value:       "info",
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Category:    "logging",
			Aliases:     []string{"f"},
			Sources:     cli.EnvVars("BQCHAT_LOG_FORMAT"),
			Usage:       "Set log format [console|json]. Guessed from TERM when empty",
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Category:    "logging",
			Aliases:     []string{"o"},
			Sources:     cli.EnvVars("BQCHAT_LOG_OUTPUT"),
			Usage:       "Set log output (create file other than '-', 'stdout', 'stderr')",
			Value:       "stderr",
			Destination: &x.output,
		},
		&cli.BoolFlag{
			Name:        "log-quiet",
			Category:    "logging",
			Usage:       "Quiet mode (no log output)",
			Sources:     cli.EnvVars("BQCHAT_LOG_QUIET"),
			Destination: &x.quiet,
		},
		&cli.BoolFlag{
			Name:        "log-stacktrace",
			Category:    "logging",
			Usage:       "Show stacktrace (only for console format)",
			Sources:     cli.EnvVars("BQCHAT_LOG_STACKTRACE"),
			Destination: &x.stacktrace,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure installs the default logger. The returned closer releases the
// log file and is never nil, even on error.
func (x *Logger) Configure() (func(), error) {
	if x.quiet {
		logging.Quiet()
		return func() {}, nil
	}

	format, err := x.logFormat()
	if err != nil {
		return func() {}, err
	}
	level, err := logging.ParseLevel(x.level)
	if err != nil {
		return func() {}, err
	}

	output, closer, err := x.openOutput()
	if err != nil {
		return closer, err
	}

	logging.SetDefault(logging.New(output, level, format, x.stacktrace))
	return closer, nil
}

// logFormat picks console for color terminals when no format is given.
func (x *Logger) logFormat() (logging.Format, error) {
	if x.format != "" {
		return logging.ParseFormat(x.format)
	}

	term := os.Getenv("TERM")
	if strings.Contains(term, "color") || strings.Contains(term, "xterm") {
		return logging.FormatConsole, nil
	}
	return logging.FormatJSON, nil
}

func (x *Logger) openOutput() (io.Writer, func(), error) {
	switch x.output {
	case "stdout", "-":
		return os.Stdout, func() {}, nil
	case "stderr", "":
		return os.Stderr, func() {}, nil
	}

	f, err := os.OpenFile(filepath.Clean(x.output), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, func() {}, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
	}
	return f, func() { safe.Close(context.Background(), f) }, nil
}
