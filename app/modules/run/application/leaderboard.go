package runservice

import (
	"context"
	"time"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
)

// Leaderboard aggregates the approved runs of a period per submitter. An
// empty periodKey means the period now belongs to.
func (s *RunService) Leaderboard(ctx context.Context, periodKey string) ([]rundb.LeaderboardRow, error) {
	if periodKey == "" {
		periodKey = s.currentPeriodKey(time.Now())
	}

	start := time.Now()
	rows, err := s.repo.Leaderboard(ctx, periodKey)
	s.metrics.RecordDBQueryDuration(ctx, time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build leaderboard",
			attr.String("period_key", periodKey),
			attr.Error(err),
		)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Leaderboard built",
		attr.String("period_key", periodKey),
		attr.Int("rows", len(rows)),
	)
	return rows, nil
}
