package runservice

// RunOperationResult carries the outcome of a service operation. Success and
// Failure are event payload pointers; at most one is set. A nil/nil result
// with a non-nil error means the operation is retryable.
type RunOperationResult struct {
	Success interface{}
	Failure interface{}
}

// IsSuccess reports whether the operation produced a success payload.
func (r RunOperationResult) IsSuccess() bool { return r.Success != nil }

// IsFailure reports whether the operation produced a failure payload.
func (r RunOperationResult) IsFailure() bool { return r.Failure != nil }
