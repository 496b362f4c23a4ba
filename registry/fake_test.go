package registry

import (
	"errors"
	"sync"

	"github.com/jongio/pyhost/procutil"
)

var errDenied = errors.New("access denied")

// fakeHandle is a procutil.Handle whose probe and terminate outcomes are
// set by the test.
type fakeHandle struct {
	mu         sync.Mutex
	pid        int
	state      procutil.State
	exitCode   int
	probeErr   error
	killErr    error
	terminated int
}

func newFake(pid int) *fakeHandle {
	return &fakeHandle{pid: pid, state: procutil.StateRunning}
}

func (f *fakeHandle) Pid() int { return f.pid }

func (f *fakeHandle) Probe() procutil.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return procutil.Status{State: f.state, ExitCode: f.exitCode, Err: f.probeErr}
}

func (f *fakeHandle) Terminate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated++
	if f.killErr != nil {
		return f.killErr
	}
	f.state = procutil.StateExited
	return nil
}

func (f *fakeHandle) exit(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = procutil.StateExited
	f.exitCode = code
}

func (f *fakeHandle) terminateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated
}
