// Package runqueue runs the module's background jobs on River. The only job
// today is the periodic stale-run sweep.
package runqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
)

// sweepInterval is how often the stale-run sweep runs.
const sweepInterval = time.Minute

// QueueService is the contract for the run module's background jobs.
type QueueService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service drives the module's River client and its pgx pool.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates a River-backed queue service. River needs its own pgx
// pool; it does not share the bun connection.
func NewService(ctx context.Context, dsn string, repo rundb.RunDB, logger *slog.Logger, decisionTimeout time.Duration) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	ctxLogger.Info("Initializing run queue service")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewStaleRunSweepWorker(repo, ctxLogger, decisionTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(sweepInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return StaleRunSweepJob{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	ctxLogger.Info("Run queue service initialized successfully")
	return &Service{
		client: riverClient,
		pool:   pool,
		logger: ctxLogger,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting run queue service")
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop drains the client and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping run queue service")
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	return nil
}

// HealthCheck verifies the underlying pool is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
