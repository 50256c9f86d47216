package runqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/internal/observability/attr"
)

// sweepGrace is added to the decision timeout before a pending run counts as
// stale, so the sweeper never races a live timer.
const sweepGrace = time.Minute

// StaleRunSweepWorker executes StaleRunSweepJob.
type StaleRunSweepWorker struct {
	river.WorkerDefaults[StaleRunSweepJob]
	repo            rundb.RunDB
	logger          *slog.Logger
	decisionTimeout time.Duration
}

func NewStaleRunSweepWorker(repo rundb.RunDB, logger *slog.Logger, decisionTimeout time.Duration) *StaleRunSweepWorker {
	return &StaleRunSweepWorker{
		repo:            repo,
		logger:          logger,
		decisionTimeout: decisionTimeout,
	}
}

func (w *StaleRunSweepWorker) Work(ctx context.Context, job *river.Job[StaleRunSweepJob]) error {
	cutoff := time.Now().UTC().Add(-(w.decisionTimeout + sweepGrace))

	swept, err := w.repo.DeletePendingBefore(ctx, cutoff)
	if err != nil {
		w.logger.ErrorContext(ctx, "Stale run sweep failed", attr.Error(err))
		return err
	}

	if swept > 0 {
		w.logger.InfoContext(ctx, "Swept stale pending runs",
			attr.Int64("swept", swept),
			attr.String("cutoff", cutoff.Format(time.RFC3339)),
		)
	}
	return nil
}
