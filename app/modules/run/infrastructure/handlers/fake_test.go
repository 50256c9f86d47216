package runhandlers

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	runservice "github.com/Paddock-Club/trackmaster/app/modules/run/application"
	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/internal/observability"
	runmetrics "github.com/Paddock-Club/trackmaster/internal/observability/metrics"
	"github.com/Paddock-Club/trackmaster/internal/utils"
)

// fakeService is a programmable runservice.Service.
type fakeService struct {
	SubmitBatchFunc     func(ctx context.Context, payload runevents.BatchSubmittedPayload) (runservice.RunOperationResult, error)
	DecideFunc          func(ctx context.Context, payload runevents.DecisionRequestPayload) (runservice.RunOperationResult, error)
	EditRecordFunc      func(ctx context.Context, payload runevents.RecordEditRequestPayload) (runservice.RunOperationResult, error)
	SetActiveRosterFunc func(ctx context.Context, payload runevents.RosterSetRequestPayload) (runservice.RunOperationResult, error)
	LeaderboardFunc     func(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error)
}

func (f *fakeService) SubmitBatch(ctx context.Context, payload runevents.BatchSubmittedPayload) (runservice.RunOperationResult, error) {
	if f.SubmitBatchFunc != nil {
		return f.SubmitBatchFunc(ctx, payload)
	}
	return runservice.RunOperationResult{}, nil
}

func (f *fakeService) Decide(ctx context.Context, payload runevents.DecisionRequestPayload) (runservice.RunOperationResult, error) {
	if f.DecideFunc != nil {
		return f.DecideFunc(ctx, payload)
	}
	return runservice.RunOperationResult{}, nil
}

func (f *fakeService) EditRecord(ctx context.Context, payload runevents.RecordEditRequestPayload) (runservice.RunOperationResult, error) {
	if f.EditRecordFunc != nil {
		return f.EditRecordFunc(ctx, payload)
	}
	return runservice.RunOperationResult{}, nil
}

func (f *fakeService) SetActiveRoster(ctx context.Context, payload runevents.RosterSetRequestPayload) (runservice.RunOperationResult, error) {
	if f.SetActiveRosterFunc != nil {
		return f.SetActiveRosterFunc(ctx, payload)
	}
	return runservice.RunOperationResult{}, nil
}

func (f *fakeService) Leaderboard(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error) {
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, periodKey)
	}
	return nil, nil
}

func (f *fakeService) PendingCount() int { return 0 }

var _ runservice.Service = (*fakeService)(nil)

func newTestHandlers(t *testing.T, svc runservice.Service) Handlers {
	t.Helper()
	return NewRunHandlers(
		svc,
		observability.NoOpLogger,
		noop.NewTracerProvider().Tracer("test"),
		utils.NewHelper(observability.NoOpLogger),
		runmetrics.NoOpMetrics{},
	)
}
