// Package run assembles the run module: repository, service, router, and
// background queue.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Paddock-Club/trackmaster/app/eventbus"
	runservice "github.com/Paddock-Club/trackmaster/app/modules/run/application"
	runqueue "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/queue"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	runrouter "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/router"
	"github.com/Paddock-Club/trackmaster/config"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

// Module represents the run module.
type Module struct {
	EventBus     eventbus.EventBus
	RunService   runservice.Service
	RunRouter    *runrouter.RunRouter
	QueueService runqueue.QueueService
	logger       *slog.Logger
	config       *config.Config
	cancelFunc   context.CancelFunc
}

// NewRunModule creates a new instance of the run module and configures its
// router and background queue.
func NewRunModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	metrics runmetrics.RunMetrics,
	tracer trace.Tracer,
	runDB rundb.RunDB,
	bus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	registry *prometheus.Registry,
) (*Module, error) {
	logger.Info("run.NewRunModule called")

	service, err := runservice.NewRunService(runDB, bus, logger, metrics, tracer, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create run service: %w", err)
	}

	moduleRouter := runrouter.NewRunRouter(logger, router, bus, bus, cfg, helpers, tracer, registry)
	if err := moduleRouter.Configure(ctx, service, metrics); err != nil {
		return nil, fmt.Errorf("failed to configure run router: %w", err)
	}

	queueService, err := runqueue.NewService(ctx, cfg.Postgres.DSN, runDB, logger, cfg.Run.DecisionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create run queue service: %w", err)
	}

	return &Module{
		EventBus:     bus,
		RunService:   service,
		RunRouter:    moduleRouter,
		QueueService: queueService,
		logger:       logger,
		config:       cfg,
	}, nil
}

// Run keeps the module alive until the context is canceled. The queue
// service is started here so its jobs stop with the module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting run module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.QueueService.Start(ctx); err != nil {
		m.logger.Error("Failed to start run queue service", slog.Any("error", err))
	}

	<-ctx.Done()
	m.logger.Info("Run module goroutine stopped")
}

// Close stops the module's background work.
func (m *Module) Close() error {
	m.logger.Info("Stopping run module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if err := m.QueueService.Stop(context.Background()); err != nil {
		m.logger.Error("Failed to stop run queue service", slog.Any("error", err))
	}

	m.logger.Info("Run module stopped")
	return nil
}
