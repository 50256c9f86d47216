// Package observability wires the logging, metrics, and tracing pieces the
// rest of the application consumes. The heavy lifting is done by slog,
// prometheus, and otel; this package only assembles them.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide slog logger. Output is JSON so the log
// pipeline can index fields without extra parsing.
func NewLogger(level, environment string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler)
	if environment != "" {
		logger = logger.With(slog.String("environment", environment))
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NoOpLogger discards everything. Intended for tests.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
