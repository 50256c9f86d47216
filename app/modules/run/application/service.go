package runservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Paddock-Club/trackmaster/app/eventbus"
	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/config"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
)

// RunService implements the Service interface.
type RunService struct {
	repo     rundb.RunDB
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  runmetrics.RunMetrics
	tracer   trace.Tracer
	registry *ControllerRegistry

	correctionThreshold int
	decisionTimeout     time.Duration
	resetDay            time.Weekday
	resetHourUTC        int

	limiterMu      sync.Mutex
	limiters       map[int64]*rate.Limiter
	submitInterval time.Duration
	submitBurst    int
}

// NewRunService creates a new RunService.
func NewRunService(
	repo rundb.RunDB,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics runmetrics.RunMetrics,
	tracer trace.Tracer,
	cfg *config.Config,
) (*RunService, error) {
	resetDay, err := cfg.Run.ResetWeekday()
	if err != nil {
		return nil, err
	}
	return &RunService{
		repo:                repo,
		eventBus:            eventBus,
		logger:              logger,
		metrics:             metrics,
		tracer:              tracer,
		registry:            NewControllerRegistry(),
		correctionThreshold: cfg.Run.CorrectionThreshold,
		decisionTimeout:     cfg.Run.DecisionTimeout,
		resetDay:            resetDay,
		resetHourUTC:        cfg.Run.ResetHourUTC,
		limiters:            make(map[int64]*rate.Limiter),
		submitInterval:      cfg.Run.SubmitInterval,
		submitBurst:         cfg.Run.SubmitBurst,
	}, nil
}

// PendingCount reports how many runs are awaiting a decision in this process.
func (s *RunService) PendingCount() int {
	return s.registry.Len()
}

// operationFunc is the signature for service operation functions.
type operationFunc func(ctx context.Context) (RunOperationResult, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery so every method reports the same way.
func (s *RunService) withTelemetry(
	ctx context.Context,
	operationName string,
	runID string,
	op operationFunc,
) (result RunOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("run_id", runID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.RunID(runID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = RunOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.RunID(runID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.RunID(runID),
			attr.Any("failure_payload", result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.RunID(runID),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// allowSubmission applies the per-submitter token bucket.
func (s *RunService) allowSubmission(submitterID int64) bool {
	if s.submitInterval <= 0 {
		return true
	}
	s.limiterMu.Lock()
	limiter, ok := s.limiters[submitterID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.submitInterval), s.submitBurst)
		s.limiters[submitterID] = limiter
	}
	s.limiterMu.Unlock()
	return limiter.Allow()
}

// currentPeriodKey derives the period key for now.
func (s *RunService) currentPeriodKey(now time.Time) string {
	return rundomain.PeriodKey(now.UTC(), s.resetDay, s.resetHourUTC)
}

// decisionStore adapts the repository to the controller's DecisionStore,
// translating storage sentinels into domain ones.
type decisionStore struct {
	repo rundb.RunDB
}

func (ds decisionStore) SetStatus(ctx context.Context, runID string, status rundomain.Status) error {
	if err := ds.repo.SetStatus(ctx, runID, status); err != nil {
		if errors.Is(err, rundb.ErrNotFound) {
			return rundomain.ErrNotFound
		}
		return err
	}
	return nil
}
