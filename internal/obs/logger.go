// Package obs provides the scheduling engine's structured logging
// constructor, a thin wrapper over log/slog so the collaborators that log
// (the HTTP server and the interactive shell) get a consistently
// component-tagged logger.
package obs

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds a slog.Logger writing JSON lines to stderr, tagged
// with component so log aggregation can filter by subsystem.
func NewLogger(component string, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("component", component)
}

// NewTextLogger builds a human-readable slog.Logger for interactive CLI
// use, where JSON lines would be noise on a terminal.
func NewTextLogger(component string, level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("component", component)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
