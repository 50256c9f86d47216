package rundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// RunDBImpl implements RunDB on top of bun. ResetDay and ResetHourUTC pin
// the weekly period boundary used for id allocation and leaderboard scoping.
type RunDBImpl struct {
	DB           *bun.DB
	ResetDay     time.Weekday
	ResetHourUTC int
}

// CreatePending allocates an id like 2025-W46-EVT-003 and writes the header
// and all score rows atomically. A failure on any row aborts the whole
// transaction, so a half-written run is never visible.
func (db *RunDBImpl) CreatePending(ctx context.Context, pending PendingRun) (*Run, error) {
	periodKey := rundomain.PeriodKey(pending.SubmittedAt.UTC(), db.ResetDay, db.ResetHourUTC)

	var created *Run
	err := db.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		seq, err := NextSequence(ctx, tx, periodKey)
		if err != nil {
			return err
		}

		run := &Run{
			ID:             fmt.Sprintf("%s-EVT-%03d", periodKey, seq),
			SubmitterID:    pending.SubmitterID,
			SubmitterLabel: pending.SubmitterLabel,
			RosterID:       pending.RosterID,
			PeriodKey:      periodKey,
			CreatedAt:      pending.SubmittedAt.UTC(),
			Status:         rundomain.StatusPending,
		}
		if _, err := tx.NewInsert().Model(run).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert run header %s: %w", run.ID, err)
		}

		scores := make([]*RunScore, 0, len(pending.Records))
		for _, rec := range pending.Records {
			scores = append(scores, &RunScore{
				RunID:        run.ID,
				Name:         rec.Name,
				Epithet:      rec.Epithet,
				Team:         rec.Team,
				Score:        rec.Score,
				OriginalName: rec.OriginalName,
				Confidence:   string(rec.Confidence),
			})
		}
		if len(scores) > 0 {
			if _, err := tx.NewInsert().Model(&scores).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert score rows for run %s: %w", run.ID, err)
			}
		}

		run.Scores = scores
		created = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SetStatus commits a terminal transition. Approval marks the header;
// rejection deletes the run and its score rows. Repeating the same terminal
// status is a no-op, but approving a run that was already deleted reports
// ErrNotFound so the caller can detect the lost race.
func (db *RunDBImpl) SetStatus(ctx context.Context, runID string, status rundomain.Status) error {
	switch status {
	case rundomain.StatusApproved:
		res, err := db.DB.NewUpdate().
			Model((*Run)(nil)).
			Set("status = ?", rundomain.StatusApproved).
			Where("id = ?", runID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to approve run %s: %w", runID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected for run %s: %w", runID, err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil

	case rundomain.StatusRejected:
		// Only a pending run can be torn down; an approved run stays, and a
		// repeated rejection simply finds nothing left to delete.
		if _, err := db.DB.NewDelete().
			Model((*Run)(nil)).
			Where("id = ?", runID).
			Where("status = ?", rundomain.StatusPending).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to reject run %s: %w", runID, err)
		}
		return nil

	default:
		return fmt.Errorf("invalid terminal status %q for run %s", status, runID)
	}
}

// GetRun loads a header with its score rows ordered by insertion.
func (db *RunDBImpl) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := db.DB.NewSelect().
		Model(&run).
		Relation("Scores", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("r.id = ?", runID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
	}
	return &run, nil
}

// UpdateScore rewrites the score row of a pending run addressed by the name
// it currently carries, and returns the row's new values. The join against
// the header keeps edits off decided runs even if the caller's in-memory
// guard is stale; a name matching no row reports ErrNotFound.
func (db *RunDBImpl) UpdateScore(ctx context.Context, runID, originalName, name, team string, score int64, confidence string) (*RunScore, error) {
	res, err := db.DB.NewUpdate().
		Model((*RunScore)(nil)).
		Set("name = ?", name).
		Set("team = ?", team).
		Set("score = ?", score).
		Set("confidence = ?", confidence).
		Where("s.run_id = ?", runID).
		Where("s.name = ?", originalName).
		Where("EXISTS (SELECT 1 FROM run_headers r WHERE r.id = s.run_id AND r.status = ?)", rundomain.StatusPending).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update score %q of run %s: %w", originalName, runID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected for score %q: %w", originalName, err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	var updated RunScore
	err = db.DB.NewSelect().
		Model(&updated).
		Where("s.run_id = ?", runID).
		Where("s.name = ?", name).
		Order("s.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload score %q: %w", name, err)
	}
	return &updated, nil
}

// DeletePendingBefore sweeps pending runs created before cutoff. It backstops
// the in-process timers after a crash or restart.
func (db *RunDBImpl) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.DB.NewDelete().
		Model((*Run)(nil)).
		Where("status = ?", rundomain.StatusPending).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale pending runs: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read swept row count: %w", err)
	}
	return rows, nil
}
