package registry

import (
	"sync"

	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/metrics"
	"github.com/jongio/pyhost/procutil"
)

// KillResult is the outcome of one terminate request during a mass kill.
type KillResult struct {
	// Role is empty for anonymous handles.
	Role string
	Pid  int
	Err  error
}

// AnonymousSet holds background processes that are tracked only so they can
// be killed on shutdown.
type AnonymousSet struct {
	mu      sync.Mutex
	handles []procutil.Handle
	log     *logutil.ComponentLogger
}

// NewAnonymousSet creates an empty set.
func NewAnonymousSet() *AnonymousSet {
	return &AnonymousSet{log: logutil.NewLogger("registry").WithFields("registry", metrics.RegistryAnonymous)}
}

// Add tracks h until the next KillAll.
func (s *AnonymousSet) Add(h procutil.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles = append(s.handles, h)
	metrics.SetTracked(metrics.RegistryAnonymous, len(s.handles))
	s.log.Debug("added background process", "pid", h.Pid(), "count", len(s.handles))
}

// Len returns the number of tracked handles.
func (s *AnonymousSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// KillAll terminates every tracked process and clears the set. A failed
// terminate is logged and recorded in the results; it does not stop the loop.
func (s *AnonymousSet) KillAll() []KillResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("killing all background processes", "count", len(s.handles))
	results := make([]KillResult, 0, len(s.handles))
	for _, h := range s.handles {
		err := h.Terminate()
		metrics.RecordTermination(metrics.RegistryAnonymous, err)
		if err != nil {
			s.log.Error("failed to kill background process", "pid", h.Pid(), "error", err)
		}
		results = append(results, KillResult{Pid: h.Pid(), Err: err})
	}

	s.handles = nil
	metrics.SetTracked(metrics.RegistryAnonymous, 0)
	s.log.Info("all background processes killed")
	return results
}
