// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func sleepCommand(seconds string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("timeout", seconds)
	}
	return exec.Command("sleep", seconds)
}

func waitDone(t *testing.T, p *Process) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("process %d did not exit", p.Pid())
	}
}

func TestIsProcessRunningCurrentProcess(t *testing.T) {
	pid := os.Getpid()
	if !IsProcessRunning(pid) {
		t.Errorf("IsProcessRunning(%d) = false for current process, expected true", pid)
	}
}

func TestIsProcessRunningInvalidPID(t *testing.T) {
	tests := []struct {
		name string
		pid  int
	}{
		{"zero pid", 0},
		{"negative pid", -1},
		{"min int32", -2147483648},
		{"beyond int32", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsProcessRunning(tt.pid) {
				t.Errorf("IsProcessRunning(%d) = true, expected false for invalid PID", tt.pid)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StateExited, "exited"},
		{StateUnknown, "unknown"},
		{State(42), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestStartProbeTerminate(t *testing.T) {
	cmd := sleepCommand("30")
	ConfigureSysProcAttr(cmd)

	p, err := Start(cmd)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = p.Terminate() }()

	if p.Pid() <= 0 {
		t.Fatalf("Pid() = %d, want positive", p.Pid())
	}
	if !IsProcessRunning(p.Pid()) {
		t.Errorf("IsProcessRunning(%d) = false for running child", p.Pid())
	}
	if st := p.Probe(); st.State != StateRunning {
		t.Fatalf("Probe().State = %v, want running (err=%v)", st.State, st.Err)
	}

	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	waitDone(t, p)

	st := p.Probe()
	if st.State != StateExited {
		t.Fatalf("Probe().State after terminate = %v, want exited", st.State)
	}

	// Terminating an exited process is not an error.
	if err := p.Terminate(); err != nil {
		t.Errorf("second Terminate() error = %v, want nil", err)
	}
}

func TestProbeReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	p, err := Start(exec.Command("sh", "-c", "exit 3"))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, p)

	st := p.Probe()
	if st.State != StateExited {
		t.Fatalf("Probe().State = %v, want exited", st.State)
	}
	if st.ExitCode != 3 {
		t.Errorf("Probe().ExitCode = %d, want 3", st.ExitCode)
	}
	if st.Err != nil {
		t.Errorf("Probe().Err = %v, want nil for a normal non-zero exit", st.Err)
	}
}

func TestStartMissingExecutable(t *testing.T) {
	_, err := Start(exec.Command("/definitely/not/a/real/interpreter"))
	if err == nil {
		t.Fatal("Start() error = nil, want spawn failure")
	}
	if errors.Is(err, ErrNotStarted) {
		t.Errorf("Start() error = %v, want the exec error", err)
	}
}
