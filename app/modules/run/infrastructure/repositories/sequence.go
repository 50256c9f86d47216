package rundb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// NextSequence atomically reserves the next counter value for a period.
//
// The row is first ensured with an insert that is a no-op when it already
// exists, then bumped with a single UPDATE ... RETURNING. The UPDATE takes a
// row lock, so concurrent callers serialize on the row and every caller gets
// a distinct value with no gaps. Safe to call inside a surrounding
// transaction by passing its bun.Tx.
func NextSequence(ctx context.Context, db bun.IDB, periodKey string) (int64, error) {
	seed := PeriodSequence{PeriodKey: periodKey, Counter: 0}
	if _, err := db.NewInsert().
		Model(&seed).
		On("CONFLICT (period_key) DO NOTHING").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to seed sequence for period %s: %w", periodKey, err)
	}

	var counter int64
	if err := db.NewUpdate().
		Model((*PeriodSequence)(nil)).
		Set("counter = counter + 1").
		Where("period_key = ?", periodKey).
		Returning("counter").
		Scan(ctx, &counter); err != nil {
		return 0, fmt.Errorf("failed to increment sequence for period %s: %w", periodKey, err)
	}
	return counter, nil
}
