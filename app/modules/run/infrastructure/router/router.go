// Package runrouter wires the run module's handlers into a watermill router
// with the middleware and metrics stack shared by the application.
package runrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Paddock-Club/trackmaster/app/eventbus"
	runservice "github.com/Paddock-Club/trackmaster/app/modules/run/application"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	runhandlers "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/handlers"
	"github.com/Paddock-Club/trackmaster/config"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type RunRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         eventbus.EventBus
	publisher          eventbus.EventBus
	config             *config.Config
	helper             utils.Helpers
	tracer             trace.Tracer
	middlewareHelper   utils.MiddlewareHelpers
	metricsBuilder     *metrics.PrometheusMetricsBuilder
	prometheusRegistry *prometheus.Registry
	metricsEnabled     bool
}

func NewRunRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	config *config.Config,
	helper utils.Helpers,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *RunRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &RunRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		publisher:          publisher,
		config:             config,
		helper:             helper,
		tracer:             tracer,
		middlewareHelper:   utils.NewMiddlewareHelper(),
		metricsBuilder:     metricsBuilder,
		prometheusRegistry: prometheusRegistry,
		metricsEnabled:     prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure adds middleware and registers the run module's handlers on the
// router held by the RunRouter.
func (r *RunRouter) Configure(routerCtx context.Context, service runservice.Service, metrics runmetrics.RunMetrics) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	handlers := runhandlers.NewRunHandlers(service, r.logger, r.tracer, r.helper, metrics)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.middlewareHelper.CommonMetadataMiddleware("run"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers subscribes each inbound topic and publishes whatever the
// handler returns to the topic stamped on the result message's metadata.
func (r *RunRouter) RegisterHandlers(ctx context.Context, handlers runhandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		runevents.RunBatchSubmitted:    handlers.HandleBatchSubmitted,
		runevents.RunDecisionRequest:   handlers.HandleDecisionRequest,
		runevents.RunRecordEditRequest: handlers.HandleRecordEditRequest,
		runevents.RosterSetRequest:     handlers.HandleRosterSetRequest,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("run.%s", topic)
		r.Router.AddNoPublisherHandler(
			handlerName,
			topic,
			r.subscriber,
			func(msg *message.Message) error {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message",
						attr.String("message_id", msg.UUID),
						attr.Any("error", err),
					)
					return err
				}
				for _, m := range messages {
					publishTopic := m.Metadata.Get(utils.TopicMetadataKey)
					if publishTopic == "" {
						r.logger.Error("handler produced a message without a topic - message dropped",
							attr.String("handler", handlerName),
							attr.String("msg_uuid", m.UUID),
							attr.String("correlation_id", m.Metadata.Get("correlation_id")),
						)
						continue
					}

					r.logger.InfoContext(ctx, "publishing message",
						attr.String("topic", publishTopic),
						attr.String("handler", handlerName),
						attr.String("correlation_id", m.Metadata.Get("correlation_id")),
					)

					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil
			},
		)
	}
	return nil
}

func (r *RunRouter) Close() error {
	return r.Router.Close()
}
