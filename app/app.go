// Package app assembles the application: database, event bus, watermill
// router, observability, and the run module.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/Paddock-Club/trackmaster/app/eventbus"
	run "github.com/Paddock-Club/trackmaster/app/modules/run"
	"github.com/Paddock-Club/trackmaster/config"
	"github.com/Paddock-Club/trackmaster/db/bundb"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

// App holds the application's long-lived components.
type App struct {
	Config    *config.Config
	DB        *bundb.DBService
	EventBus  eventbus.EventBus
	Router    *message.Router
	RunModule *run.Module

	logger       *slog.Logger
	registry     *prometheus.Registry
	healthServer *http.Server
	wg           sync.WaitGroup
}

// NewApp wires every component together. Nothing is running yet when it
// returns; Run starts the router, module, and health server.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewBunDBService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, cfg.NATS.NkeySeedFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := runmetrics.NewPrometheusMetrics(registry)
	tracer := otel.GetTracerProvider().Tracer("trackmaster")

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	helpers := utils.NewHelper(logger)

	runModule, err := run.NewRunModule(ctx, cfg, logger, metrics, tracer, dbService.RunDB, bus, router, helpers, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run module: %w", err)
	}

	application := &App{
		Config:    cfg,
		DB:        dbService,
		EventBus:  bus,
		Router:    router,
		RunModule: runModule,
		logger:    logger,
		registry:  registry,
	}
	application.healthServer = application.newHealthServer(cfg.Observability.MetricsAddress)
	return application, nil
}

// Run starts the watermill router, the run module, and the health/metrics
// server, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.wg.Add(1)
	go a.RunModule.Run(ctx, &a.wg)

	go func() {
		a.logger.Info("Starting health server",
			slog.String("address", a.healthServer.Addr),
		)
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health server failed", slog.Any("error", err))
		}
	}()

	a.logger.Info("Starting watermill router")
	if err := a.Router.Run(ctx); err != nil {
		return fmt.Errorf("watermill router stopped: %w", err)
	}
	return nil
}

// Close shuts everything down in reverse dependency order.
func (a *App) Close() {
	a.logger.Info("Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Failed to shut down health server", slog.Any("error", err))
	}

	if err := a.RunModule.Close(); err != nil {
		a.logger.Error("Failed to close run module", slog.Any("error", err))
	}
	a.wg.Wait()

	if err := a.Router.Close(); err != nil {
		a.logger.Error("Failed to close watermill router", slog.Any("error", err))
	}
	if err := a.EventBus.Close(); err != nil {
		a.logger.Error("Failed to close event bus", slog.Any("error", err))
	}
	if err := a.DB.GetDB().Close(); err != nil {
		a.logger.Error("Failed to close database", slog.Any("error", err))
	}

	a.logger.Info("Application shut down")
}

// newHealthServer exposes liveness, readiness, and prometheus metrics.
func (a *App) newHealthServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := a.DB.GetDB().PingContext(req.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if err := a.RunModule.QueueService.HealthCheck(req.Context()); err != nil {
			http.Error(w, "queue unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
