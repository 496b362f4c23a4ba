// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerCreatesWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)

	logger := NewLogger("registry")
	if logger.Component() != "registry" {
		t.Errorf("expected component 'registry', got %q", logger.Component())
	}

	logger.Info("hello")
	if out := buf.String(); !strings.Contains(out, "component=registry") {
		t.Errorf("expected output to contain component=registry, got: %s", out)
	}
}

func TestWithRoleAndPid(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)

	NewLogger("supervisor").WithRole("server").WithPid(4242).Info("started")

	out := buf.String()
	for _, want := range []string{"component=supervisor", "role=server", "pid=4242", "msg=started"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)

	parent := NewLogger("launcher")
	_ = parent.WithRole("executor")
	parent.Info("plain")

	if strings.Contains(buf.String(), "role=executor") {
		t.Errorf("child fields leaked into parent: %s", buf.String())
	}
}

// Loggers created before SetupLogger must follow the new configuration.
func TestLoggerFollowsReconfiguration(t *testing.T) {
	logger := NewLogger("early").WithOperation("probe")

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, true)
	logger.Warn("late")

	out := buf.String()
	if !strings.Contains(out, `"component":"early"`) || !strings.Contains(out, `"operation":"probe"`) {
		t.Errorf("expected JSON fields from the early logger, got: %s", out)
	}
}

func TestComponentDebugRespectsLevel(t *testing.T) {
	t.Setenv(EnvDebug, "")

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	NewLogger("c").Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no debug output, got: %s", buf.String())
	}

	SetupLoggerWithWriter(&buf, true, false)
	NewLogger("c").WithFields("k", "v").Debug("shown")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected debug output with k=v, got: %s", buf.String())
	}
}
