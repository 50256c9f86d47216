package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// InitializeStreams ensures the streams backing the run module's topics exist
// before any publisher or subscriber touches them.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	streamConfigs := []jetstream.StreamConfig{
		{
			Name:     "run",
			Subjects: []string{"run.>"},
		},
		{
			Name:     "roster",
			Subjects: []string{"roster.>"},
		},
	}

	for _, streamConfig := range streamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.Error("Failed to create JetStream stream",
					slog.String("stream", streamConfig.Name),
					slog.Any("error", err),
				)
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Created JetStream stream", slog.String("stream", streamConfig.Name))
		} else if err != nil {
			return fmt.Errorf("failed to check stream %s: %w", streamConfig.Name, err)
		}
	}
	return nil
}
