package runqueue

// StaleRunSweepJob deletes pending runs whose decision window has long
// passed. It backstops the in-process timers: after a crash or restart the
// timers are gone, but the sweep still retires orphaned pending runs.
type StaleRunSweepJob struct{}

// Kind returns the job type identifier for River.
func (StaleRunSweepJob) Kind() string { return "stale_run_sweep" }
