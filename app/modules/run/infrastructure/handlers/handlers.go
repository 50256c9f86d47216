// Package runhandlers adapts the run service to watermill messages: each
// handler unmarshals a payload, invokes one service operation, and emits the
// result as messages tagged with their publish topic.
package runhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	runservice "github.com/Paddock-Club/trackmaster/app/modules/run/application"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

// RunHandlers handles run-related events.
type RunHandlers struct {
	service        runservice.Service
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        runmetrics.RunMetrics
	helpers        utils.Helpers
	handlerWrapper func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc
}

// NewRunHandlers creates a new RunHandlers.
func NewRunHandlers(
	service runservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics runmetrics.RunMetrics,
) Handlers {
	return &RunHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		helpers: helpers,
		metrics: metrics,
		handlerWrapper: func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc {
			return handlerWrapper(handlerName, unmarshalTo, handlerFunc, logger, metrics, tracer, helpers)
		},
	}
}

// handlerWrapper is a standalone function that handles common tracing,
// logging, and metrics for handlers.
func handlerWrapper(
	handlerName string,
	unmarshalTo interface{},
	handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error),
	logger *slog.Logger,
	metrics runmetrics.RunMetrics,
	tracer trace.Tracer,
	helpers utils.Helpers,
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName)
		defer span.End()
		ctx = attr.WithCorrelationID(ctx, msg.Metadata.Get("correlation_id"))

		metrics.RecordHandlerAttempt(handlerName)

		startTime := time.Now()
		defer func() {
			metrics.RecordHandlerDuration(handlerName, time.Since(startTime).Seconds())
		}()

		logger.Info(handlerName+" triggered",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
		)

		payloadInstance := unmarshalTo
		if payloadInstance != nil {
			if err := helpers.UnmarshalPayload(msg, payloadInstance); err != nil {
				metrics.RecordHandlerFailure(handlerName)
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		result, err := handlerFunc(ctx, msg, payloadInstance)
		if err != nil {
			logger.Error("Error in "+handlerName,
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			metrics.RecordHandlerFailure(handlerName)
			span.RecordError(err)
			return nil, err
		}

		metrics.RecordHandlerSuccess(handlerName)
		return result, nil
	}
}
