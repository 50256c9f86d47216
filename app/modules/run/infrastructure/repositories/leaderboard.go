package rundb

import (
	"context"
	"fmt"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// Leaderboard aggregates approved runs of one period per submitter. Pending
// runs never appear here; rejected runs are gone from storage entirely.
func (db *RunDBImpl) Leaderboard(ctx context.Context, periodKey string) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := db.DB.NewSelect().
		Model((*Run)(nil)).
		ColumnExpr("r.submitter_id").
		ColumnExpr("MAX(r.submitter_label) AS submitter_label").
		ColumnExpr("MAX(r.roster_id) AS roster_id").
		ColumnExpr("COUNT(DISTINCT r.id) AS run_count").
		ColumnExpr("COALESCE(MAX(totals.total), 0) AS best_score").
		ColumnExpr("COALESCE(SUM(totals.total), 0) AS total_score").
		Join("JOIN (?) AS totals ON totals.run_id = r.id",
			db.DB.NewSelect().
				Model((*RunScore)(nil)).
				ColumnExpr("s.run_id").
				ColumnExpr("SUM(s.score) AS total").
				GroupExpr("s.run_id")).
		Where("r.period_key = ?", periodKey).
		Where("r.status = ?", rundomain.StatusApproved).
		GroupExpr("r.submitter_id").
		OrderExpr("best_score DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard for period %s: %w", periodKey, err)
	}
	return rows, nil
}
