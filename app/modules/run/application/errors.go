package runservice

import "errors"

var (
	// ErrEmptyBatch means a submission carried no records at all.
	ErrEmptyBatch = errors.New("batch contains no records")
	// ErrRateLimited means the submitter exceeded the submission throttle.
	ErrRateLimited = errors.New("submission rate limit exceeded")
	// ErrInvalidAction means a decision request named an unknown action.
	ErrInvalidAction = errors.New("invalid decision action")
	// ErrInvalidRoster means a roster change named a roster that cannot exist.
	ErrInvalidRoster = errors.New("invalid roster id")
)
