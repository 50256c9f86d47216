package runservice

import (
	"sync"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// ControllerRegistry tracks the live lifecycle controller of every pending
// run, keyed by run id. Controllers leave the registry when their run reaches
// a terminal state.
type ControllerRegistry struct {
	mu          sync.RWMutex
	controllers map[string]*rundomain.LifecycleController
}

func NewControllerRegistry() *ControllerRegistry {
	return &ControllerRegistry{
		controllers: make(map[string]*rundomain.LifecycleController),
	}
}

// Register tracks a controller under its run id.
func (r *ControllerRegistry) Register(c *rundomain.LifecycleController) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers[c.RunID()] = c
}

// Get returns the controller for runID, or nil when the run is not pending
// in this process.
func (r *ControllerRegistry) Get(runID string) *rundomain.LifecycleController {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controllers[runID]
}

// Remove drops a controller once its run is decided.
func (r *ControllerRegistry) Remove(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, runID)
}

// Len reports how many runs are awaiting a decision.
func (r *ControllerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}
