// Package cli implements the flowtower command-line interface.
//
// The commands mirror the pipeline stages: layout computes canvas positions,
// cells serializes them for the canvas, tree builds the nested list view,
// render draws previews, and check lints a payload. serve exposes the same
// stages over HTTP and cache manages the local result cache.
//
// # Input and Output
//
// Every stage command takes a pipeline tree in JSON or YAML. The path "-"
// reads stdin, and "-o -" writes the result to stdout.
//
// # Configuration
//
// Defaults come from a TOML file, by default
// $XDG_CONFIG_HOME/flowtower/config.toml. Flags set on the command line
// override it.
//
// # Logging
//
// Loggers are passed through context.Context; main raises the level with
// --verbose.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger on w stamped with wall-clock time to
// the hundredth of a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          appName,
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
