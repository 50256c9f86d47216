package rundomain

import "errors"

// Sentinel errors shared by the lifecycle controller and the service layer.
var (
	// ErrAlreadyDecided signals a terminal transition was attempted on a run
	// that already reached a terminal state. Callers should tell the user the
	// run was already processed, not apologize for an outage.
	ErrAlreadyDecided = errors.New("run already decided")

	// ErrUnauthorized signals the acting identity is not the run's submitter.
	ErrUnauthorized = errors.New("actor is not the run submitter")

	// ErrNotFound signals the run or record targeted by an operation no
	// longer exists.
	ErrNotFound = errors.New("run not found")
)
