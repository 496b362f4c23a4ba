// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	SetupLogger(true, false)
	if !IsDebugEnabled() {
		t.Error("expected debug to be enabled")
	}
	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", GetLevel())
	}

	SetupLogger(false, false)
	if GetLevel() != LevelInfo {
		t.Errorf("expected LevelInfo, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelStringRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if got := ParseLevel(l.String()); got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
}

func TestIsDebugEnabledEnvVar(t *testing.T) {
	SetupLogger(false, false)

	t.Setenv(EnvDebug, "true")
	if !IsDebugEnabled() {
		t.Error("expected debug to be enabled via env var")
	}

	t.Setenv(EnvDebug, "")
	if IsDebugEnabled() {
		t.Error("expected debug to be disabled")
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, true)

	Info("role started", "pid", 42)

	out := buf.String()
	if !strings.Contains(out, `"msg":"role started"`) {
		t.Errorf("expected JSON output with msg field, got: %s", out)
	}
	if !strings.Contains(out, `"pid":42`) {
		t.Errorf("expected JSON output with pid field, got: %s", out)
	}
}

func TestSetLevelFiltersLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	SetLevel(LevelError)

	Warn("dropped")
	Error("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("warn message should be filtered at error level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("error message missing: %s", out)
	}
	SetLevel(LevelInfo)
}

func TestConfigureKeepsWriterWhenNil(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	Configure(nil, LevelWarn, false)

	Warn("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Errorf("expected output in original writer, got: %s", buf.String())
	}
	SetLevel(LevelInfo)
}

func TestSetOutput(t *testing.T) {
	SetupLogger(false, false)
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("expected redirected output, got: %s", buf.String())
	}
}
