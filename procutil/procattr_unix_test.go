//go:build !windows

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// gone reports whether pid no longer exists or is a zombie awaiting reaping.
func gone(pid int) bool {
	ps, err := process.NewProcess(int32(pid))
	if err != nil {
		return true
	}
	status, err := ps.Status()
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == process.Zombie {
			return true
		}
	}
	return false
}

// TestTerminateKillsProcessGroup checks that a grandchild started by the
// tracked process dies with it.
func TestTerminateKillsProcessGroup(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 30 & echo $!; wait")
	ConfigureSysProcAttr(cmd)
	out, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("StdoutPipe() error = %v", err)
	}

	p, err := Start(cmd)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	buf := make([]byte, 32)
	n, err := out.Read(buf)
	if err != nil {
		t.Fatalf("reading grandchild pid: %v", err)
	}
	grandchild, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		t.Fatalf("parsing grandchild pid %q: %v", buf[:n], err)
	}

	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	waitDone(t, p)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if gone(grandchild) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("grandchild %d still alive after group terminate", grandchild)
}

func TestConfigureSysProcAttrSetsProcessGroup(t *testing.T) {
	cmd := exec.Command("true")
	ConfigureSysProcAttr(cmd)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Error("ConfigureSysProcAttr() did not set Setpgid")
	}
}
