package rundb

import (
	"context"
	"time"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// PendingRun is the input to CreatePending: everything but the run id,
// which the repository allocates inside the transaction.
type PendingRun struct {
	SubmitterID    int64
	SubmitterLabel string
	RosterID       int64
	SubmittedAt    time.Time
	Records        []rundomain.CorrectedRecord
}

// LeaderboardRow is one aggregated line of the period leaderboard.
type LeaderboardRow struct {
	SubmitterID    int64  `bun:"submitter_id"`
	SubmitterLabel string `bun:"submitter_label"`
	RosterID       int64  `bun:"roster_id"`
	RunCount       int64  `bun:"run_count"`
	BestScore      int64  `bun:"best_score"`
	TotalScore     int64  `bun:"total_score"`
}

// RunDB is the storage surface of the run module.
type RunDB interface {
	// CreatePending allocates the next id in the current period and persists
	// the header plus all score rows in one transaction.
	CreatePending(ctx context.Context, pending PendingRun) (*Run, error)
	// SetStatus commits a terminal transition: approving marks the header,
	// rejecting deletes the run outright. Repeating the same terminal status
	// is a no-op; approving a deleted run reports ErrNotFound.
	SetStatus(ctx context.Context, runID string, status rundomain.Status) error
	// GetRun loads a header with its score rows.
	GetRun(ctx context.Context, runID string) (*Run, error)
	// UpdateScore rewrites the score row of a pending run that currently
	// carries originalName.
	UpdateScore(ctx context.Context, runID, originalName, name, team string, score int64, confidence string) (*RunScore, error)
	// DeletePendingBefore removes pending runs older than cutoff and returns
	// how many were swept.
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetVocabulary(ctx context.Context) (rundomain.Vocabulary, error)
	AddVocabularyEntry(ctx context.Context, name string) error

	GetActiveRoster(ctx context.Context, submitterID int64) (int64, error)
	SetActiveRoster(ctx context.Context, submitterID int64, rosterID int64, displayName *string) error

	Leaderboard(ctx context.Context, periodKey string) ([]LeaderboardRow, error)
}
