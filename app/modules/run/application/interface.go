package runservice

import (
	"context"

	runevents "github.com/Paddock-Club/trackmaster/app/modules/run/events"
	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
)

// Service is the application surface of the run module.
type Service interface {
	// SubmitBatch validates and corrects an OCR batch, persists it as a
	// pending run, and arms the decision timeout.
	SubmitBatch(ctx context.Context, payload runevents.BatchSubmittedPayload) (RunOperationResult, error)
	// Decide applies a confirm or cancel to a pending run.
	Decide(ctx context.Context, payload runevents.DecisionRequestPayload) (RunOperationResult, error)
	// EditRecord rewrites one score row of a pending run.
	EditRecord(ctx context.Context, payload runevents.RecordEditRequestPayload) (RunOperationResult, error)
	// SetActiveRoster changes the roster new submissions are attributed to.
	SetActiveRoster(ctx context.Context, payload runevents.RosterSetRequestPayload) (RunOperationResult, error)
	// Leaderboard aggregates the approved runs of a period. An empty
	// periodKey means the current period.
	Leaderboard(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error)
	// PendingCount reports how many runs are currently awaiting a decision.
	PendingCount() int
}
