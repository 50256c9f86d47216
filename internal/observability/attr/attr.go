// Package attr provides slog attribute helpers shared across modules so log
// fields stay consistently named between services, handlers, and workers.
package attr

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

func RunID(value string) slog.Attr {
	return slog.String("run_id", value)
}

func SubmitterID(value int64) slog.Attr {
	return slog.Int64("submitter_id", value)
}

type correlationIDKey struct{}

// WithCorrelationID stores a correlation ID on the context so service-layer
// logs can be joined with the message that triggered them.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// ExtractCorrelationID returns the correlation ID attr for the context, or an
// empty-valued attr when none was set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return slog.String("correlation_id", id)
}

// CorrelationIDFromMsg reads the correlation ID watermill middleware put on
// the message metadata.
func CorrelationIDFromMsg(msg *message.Message) slog.Attr {
	return slog.String("correlation_id", middleware.MessageCorrelationID(msg))
}
