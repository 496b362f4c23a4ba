// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrNotStarted is returned by Start when the command has no process after
// a successful exec.Cmd.Start, which indicates a misuse of the API.
var ErrNotStarted = errors.New("command did not produce a process")

// Process is a Handle backed by an exec.Cmd. The child is reaped by a
// dedicated goroutine so Probe never blocks.
type Process struct {
	cmd  *exec.Cmd
	pid  int
	ps   *process.Process
	done chan struct{}

	// written once by reap before done is closed
	exitCode int
	waitErr  error
}

var _ Handle = (*Process)(nil)

// Start starts cmd and returns a Handle for the resulting process.
// The caller configures stdio, environment and SysProcAttr beforehand.
func Start(cmd *exec.Cmd) (*Process, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	if cmd.Process == nil {
		return nil, ErrNotStarted
	}

	p := &Process{
		cmd:      cmd,
		pid:      cmd.Process.Pid,
		done:     make(chan struct{}),
		exitCode: -1,
	}

	// gopsutil caches the creation time on first read; reading it now lets
	// IsRunning tell our child apart from a later process reusing the PID.
	if ps, err := process.NewProcess(int32(p.pid)); err == nil {
		if _, err := ps.CreateTime(); err == nil {
			p.ps = ps
		}
	}

	go p.reap()
	return p, nil
}

func (p *Process) reap() {
	err := p.cmd.Wait()
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.waitErr = fmt.Errorf("wait for process %d: %w", p.pid, err)
	}
	close(p.done)
}

// Pid returns the OS process identifier.
func (p *Process) Pid() int {
	return p.pid
}

// Done is closed once the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Probe reports the process state without blocking.
func (p *Process) Probe() Status {
	select {
	case <-p.done:
		return Status{State: StateExited, ExitCode: p.exitCode, Err: p.waitErr}
	default:
	}

	if p.ps == nil {
		// Reaper is authoritative when gopsutil could not attach.
		return Status{State: StateRunning}
	}

	running, err := p.ps.IsRunning()
	if err != nil {
		// The reaper may have finished while gopsutil was looking.
		select {
		case <-p.done:
			return Status{State: StateExited, ExitCode: p.exitCode, Err: p.waitErr}
		default:
		}
		return Status{State: StateUnknown, Err: fmt.Errorf("query process %d: %w", p.pid, err)}
	}
	if !running {
		return Status{State: StateExited, ExitCode: -1}
	}
	return Status{State: StateRunning}
}

// KillGroup kills the process started by cmd together with its process
// group when ConfigureSysProcAttr placed it in one. A process that already
// exited is not an error.
func KillGroup(cmd *exec.Cmd) error {
	return terminate(cmd)
}

// Terminate kills the process. It does not wait for the process to exit.
func (p *Process) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := terminate(p.cmd); err != nil {
		return fmt.Errorf("kill process %d: %w", p.pid, err)
	}
	return nil
}
