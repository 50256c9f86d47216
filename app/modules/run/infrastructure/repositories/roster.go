package rundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// defaultRosterID is assumed for submitters who never picked a roster.
const defaultRosterID = 1

// GetActiveRoster returns a submitter's active roster, falling back to the
// default when no setting exists yet.
func (db *RunDBImpl) GetActiveRoster(ctx context.Context, submitterID int64) (int64, error) {
	var setting RosterSetting
	err := db.DB.NewSelect().
		Model(&setting).
		Where("submitter_id = ?", submitterID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultRosterID, nil
		}
		return 0, fmt.Errorf("failed to load roster setting for submitter %d: %w", submitterID, err)
	}
	return setting.ActiveRosterID, nil
}

// SetActiveRoster upserts the submitter's roster selection. A nil displayName
// leaves any stored name untouched.
func (db *RunDBImpl) SetActiveRoster(ctx context.Context, submitterID int64, rosterID int64, displayName *string) error {
	setting := RosterSetting{
		SubmitterID:    submitterID,
		ActiveRosterID: rosterID,
		DisplayName:    displayName,
	}
	q := db.DB.NewInsert().
		Model(&setting).
		On("CONFLICT (submitter_id) DO UPDATE").
		Set("active_roster_id = EXCLUDED.active_roster_id")
	if displayName != nil {
		q = q.Set("display_name = EXCLUDED.display_name")
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set roster %d for submitter %d: %w", rosterID, submitterID, err)
	}
	return nil
}
