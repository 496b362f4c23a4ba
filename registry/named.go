package registry

import (
	"sort"
	"sync"

	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/metrics"
	"github.com/jongio/pyhost/procutil"
)

// ExitFunc is called after IsRunning removes an entry whose process exited.
type ExitFunc func(role string, pid int, status procutil.Status)

// NamedTable maps a role name to at most one live process handle.
type NamedTable struct {
	mu      sync.Mutex
	entries map[string]procutil.Handle
	onExit  []ExitFunc
	log     *logutil.ComponentLogger
}

// NewNamedTable creates an empty table.
func NewNamedTable() *NamedTable {
	return &NamedTable{
		entries: make(map[string]procutil.Handle),
		log:     logutil.NewLogger("registry").WithFields("registry", metrics.RegistryNamed),
	}
}

// OnExit registers fn to be notified of stale entries removed by IsRunning.
// Observers run after the table lock is released.
func (t *NamedTable) OnExit(fn ExitFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = append(t.onExit, fn)
}

// Add inserts h for role, replacing any existing entry. Callers check
// IsRunning first: a replaced handle is not terminated.
func (t *NamedTable) Add(role string, h procutil.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.entries[role]; ok {
		t.log.Warn("replacing tracked process without terminating it", "role", role, "oldPid", prev.Pid(), "pid", h.Pid())
	}
	t.entries[role] = h
	metrics.SetTracked(metrics.RegistryNamed, len(t.entries))
	t.log.Debug("added process", "role", role, "pid", h.Pid())
}

// IsRunning reports whether role has a live process. An entry whose process
// has exited is removed. If the OS cannot be queried the role is reported as
// running, so a caller never launches a second copy of a role whose state is
// unknown.
func (t *NamedTable) IsRunning(role string) bool {
	t.mu.Lock()
	h, ok := t.entries[role]
	if !ok {
		t.mu.Unlock()
		return false
	}

	st := h.Probe()
	switch st.State {
	case procutil.StateRunning:
		t.mu.Unlock()
		return true
	case procutil.StateExited:
		delete(t.entries, role)
		metrics.SetTracked(metrics.RegistryNamed, len(t.entries))
		observers := append([]ExitFunc(nil), t.onExit...)
		t.mu.Unlock()

		metrics.RecordStale(role)
		t.log.Info("process has exited", "role", role, "pid", h.Pid(), "exitCode", st.ExitCode)
		for _, fn := range observers {
			fn(role, h.Pid(), st)
		}
		return false
	default:
		t.mu.Unlock()
		metrics.RecordProbeError(role)
		t.log.Error("failed to query process status, assuming running", "role", role, "pid", h.Pid(), "error", st.Err)
		return true
	}
}

// Pid returns the process identifier tracked for role without probing it.
func (t *NamedTable) Pid(role string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.entries[role]
	if !ok {
		return 0, false
	}
	return h.Pid(), true
}

// Take removes and returns the handle for role. The caller owns it afterwards.
func (t *NamedTable) Take(role string) (procutil.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.entries[role]
	if ok {
		delete(t.entries, role)
		metrics.SetTracked(metrics.RegistryNamed, len(t.entries))
		t.log.Debug("took process", "role", role, "pid", h.Pid())
	}
	return h, ok
}

// Kill terminates the process for role and removes its entry. It returns
// false if role is not tracked or the terminate failed; a failed entry is kept
// so the kill can be retried.
func (t *NamedTable) Kill(role string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.entries[role]
	if !ok {
		return false
	}

	err := h.Terminate()
	metrics.RecordTermination(metrics.RegistryNamed, err)
	if err != nil {
		t.log.Error("failed to kill process", "role", role, "pid", h.Pid(), "error", err)
		return false
	}

	delete(t.entries, role)
	metrics.SetTracked(metrics.RegistryNamed, len(t.entries))
	t.log.Info("process killed", "role", role, "pid", h.Pid())
	return true
}

// KillAll terminates every tracked process and clears the table regardless
// of individual failures.
func (t *NamedTable) KillAll() []KillResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Info("killing all role processes", "count", len(t.entries))
	results := make([]KillResult, 0, len(t.entries))
	for _, role := range sortedKeys(t.entries) {
		h := t.entries[role]
		err := h.Terminate()
		metrics.RecordTermination(metrics.RegistryNamed, err)
		if err != nil {
			t.log.Error("failed to kill process", "role", role, "pid", h.Pid(), "error", err)
		} else {
			t.log.Info("process killed", "role", role, "pid", h.Pid())
		}
		results = append(results, KillResult{Role: role, Pid: h.Pid(), Err: err})
	}

	t.entries = make(map[string]procutil.Handle)
	metrics.SetTracked(metrics.RegistryNamed, 0)
	t.log.Info("all role processes killed")
	return results
}

// Roles returns the tracked role names in sorted order.
func (t *NamedTable) Roles() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.entries)
}

func sortedKeys(m map[string]procutil.Handle) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
