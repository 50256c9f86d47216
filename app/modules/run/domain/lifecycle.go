package rundomain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunState is the controller-side lifecycle state of one run.
type RunState int32

const (
	StateAwaitingDecision RunState = iota
	StateApproved
	StateRejected
)

func (s RunState) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateApproved:
		return "approved"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// DecisionStore is the slice of the run repository a controller needs to
// commit a terminal transition.
type DecisionStore interface {
	SetStatus(ctx context.Context, runID string, status Status) error
}

// ResolvedFunc is invoked exactly once, outside the controller's critical
// section, after a terminal transition has been committed to storage.
type ResolvedFunc func(runID string, state RunState, byTimeout bool)

// expireStoreTimeout bounds the storage call made from the timer goroutine,
// which has no caller-supplied context.
const expireStoreTimeout = 10 * time.Second

// LifecycleController guards the state machine of a single pending run.
//
// Confirm, Cancel, and the internal timeout all funnel through the same
// critical section, so exactly one terminal transition wins no matter how the
// triggers interleave; the losers get ErrAlreadyDecided. The controller holds
// only a non-owning handle (run id + submitter id) — the persisted run can be
// mutated by other actors, and a lost race against them is also reported as
// ErrAlreadyDecided rather than a storage fault.
type LifecycleController struct {
	runID       string
	submitterID int64
	store       DecisionStore
	logger      *slog.Logger
	onResolved  ResolvedFunc

	mu    sync.Mutex
	state RunState
	timer *time.Timer
}

// NewLifecycleController creates a controller in AwaitingDecision and arms
// the auto-reject timer. A timeout of zero disables the timer (used by
// callers that drive expiry themselves, e.g. tests).
func NewLifecycleController(
	runID string,
	submitterID int64,
	store DecisionStore,
	timeout time.Duration,
	logger *slog.Logger,
	onResolved ResolvedFunc,
) *LifecycleController {
	c := &LifecycleController{
		runID:       runID,
		submitterID: submitterID,
		store:       store,
		logger:      logger,
		onResolved:  onResolved,
		state:       StateAwaitingDecision,
	}
	if timeout > 0 {
		c.timer = time.AfterFunc(timeout, c.expire)
	}
	return c
}

// RunID returns the identifier of the run this controller guards.
func (c *LifecycleController) RunID() string { return c.runID }

// SubmitterID returns the identity allowed to act on this run.
func (c *LifecycleController) SubmitterID() int64 { return c.submitterID }

// State returns the current lifecycle state.
func (c *LifecycleController) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Confirm approves the run. Legal only from AwaitingDecision; a storage
// failure leaves the run awaiting and is surfaced as a retryable error.
func (c *LifecycleController) Confirm(ctx context.Context, actorID int64) error {
	return c.decide(ctx, actorID, StateApproved)
}

// Cancel rejects the run at the submitter's request.
func (c *LifecycleController) Cancel(ctx context.Context, actorID int64) error {
	return c.decide(ctx, actorID, StateRejected)
}

// Edit authorizes a single-record correction while the run is still awaiting
// a decision and runs apply outside the critical section. Edits do not change
// the lifecycle state.
func (c *LifecycleController) Edit(ctx context.Context, actorID int64, apply func(ctx context.Context) error) error {
	if actorID != c.submitterID {
		return ErrUnauthorized
	}
	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return ErrAlreadyDecided
	}
	c.mu.Unlock()
	return apply(ctx)
}

func (c *LifecycleController) decide(ctx context.Context, actorID int64, target RunState) error {
	if actorID != c.submitterID {
		return ErrUnauthorized
	}

	var status Status
	switch target {
	case StateApproved:
		status = StatusApproved
	case StateRejected:
		status = StatusRejected
	default:
		return fmt.Errorf("invalid terminal state %v", target)
	}

	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return ErrAlreadyDecided
	}

	if err := c.store.SetStatus(ctx, c.runID, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			// The persisted run vanished underneath us: the sweeper or
			// another actor already rejected it. Absorb the terminal state
			// and report the lost race, not a storage fault.
			c.state = StateRejected
			c.stopTimerLocked()
			c.mu.Unlock()
			return ErrAlreadyDecided
		}
		c.mu.Unlock()
		return fmt.Errorf("persisting %s decision for run %s: %w", status, c.runID, err)
	}

	c.state = target
	c.stopTimerLocked()
	c.mu.Unlock()

	if c.onResolved != nil {
		c.onResolved(c.runID, target, false)
	}
	return nil
}

// expire is the timer path: an unattributed cancel through the same guarded
// entry point as user actions.
func (c *LifecycleController) expire() {
	ctx, cancel := context.WithTimeout(context.Background(), expireStoreTimeout)
	defer cancel()

	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return
	}

	if err := c.store.SetStatus(ctx, c.runID, StatusRejected); err != nil {
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Error("timeout auto-reject failed, leaving run to the sweeper",
				slog.String("run_id", c.runID),
				slog.Any("error", err),
			)
		}
		return
	}

	c.state = StateRejected
	c.mu.Unlock()

	if c.onResolved != nil {
		c.onResolved(c.runID, StateRejected, true)
	}
}

func (c *LifecycleController) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
}
