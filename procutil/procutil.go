// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"math"

	"github.com/shirou/gopsutil/v4/process"
)

// IsProcessRunning checks if a process with the given PID is running.
// Works cross-platform; non-positive and out-of-range PIDs are never running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 || pid > math.MaxInt32 {
		return false
	}

	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return exists
}

// State is the outcome of a non-blocking status probe.
type State int

const (
	// StateRunning means the process has not exited.
	StateRunning State = iota
	// StateExited means the process has exited.
	StateExited
	// StateUnknown means the OS could not be queried.
	StateUnknown
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Status is the result of Handle.Probe.
type Status struct {
	State State
	// ExitCode is the exit code for StateExited, or -1 when the process was
	// observed gone without a recorded exit status.
	ExitCode int
	// Err is the probe failure for StateUnknown, or the wait error for
	// StateExited when the child did not exit cleanly.
	Err error
}

// Handle is an opaque reference to a live OS process.
type Handle interface {
	// Pid returns the OS process identifier.
	Pid() int
	// Probe reports whether the process has exited without blocking.
	Probe() Status
	// Terminate asks the OS to kill the process. Terminating a process
	// that already exited is not an error.
	Terminate() error
}
