// Package logging configures the slog loggers handed to each component.
// Key material and passwords must never reach a log line; callers log
// identifiers and kinds only.
package logging

import (
	"io"
	"log/slog"
	"os"
)

func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// For returns a component-scoped child logger.
func For(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		base = New(nil, false)
	}
	return base.With("component", component)
}
