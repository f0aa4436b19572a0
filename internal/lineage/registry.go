package lineage

import "sync"

// Registry hands out at most one live log per (workflow id, run id) pair.
// Requesting a log for a workflow with a new run id discards the previous
// instance instead of accumulating events across runs.
type Registry struct {
	mu   sync.Mutex
	logs map[string]*Log // keyed by workflow id; holds the current run only
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{logs: make(map[string]*Log)}
}

// For returns the live log for the (workflowID, runID) pair, creating it
// on first request. A request with a different run id for the same
// workflow replaces the previous log.
func (r *Registry) For(workflowID, runID string) *Log {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.logs[workflowID]; ok && l.runID == runID {
		return l
	}
	l := New(workflowID, runID)
	r.logs[workflowID] = l
	return l
}

// defaultRegistry is the process-wide registry used by For.
var defaultRegistry = NewRegistry()

// For returns a log from the process-wide registry. Callers that want
// isolated lifecycles construct their own Registry or inject a fresh Log.
func For(workflowID, runID string) *Log {
	return defaultRegistry.For(workflowID, runID)
}
