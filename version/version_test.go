package version

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/jongio/pyhost/cliout"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := cliout.SetOutput(&buf)
	t.Cleanup(func() {
		cliout.SetOutput(prev)
		_ = cliout.SetFormat("default")
	})
	return &buf
}

func TestGet_Defaults(t *testing.T) {
	info := Get()
	if info.Version != "0.0.0-dev" {
		t.Errorf("expected Version '0.0.0-dev', got %q", info.Version)
	}
	if info.BuildDate != "unknown" {
		t.Errorf("expected BuildDate 'unknown', got %q", info.BuildDate)
	}
	if info.GitCommit != "unknown" {
		t.Errorf("expected GitCommit 'unknown', got %q", info.GitCommit)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected Platform %q", info.Platform)
	}
}

func TestInfo_String(t *testing.T) {
	info := &Info{
		Name:      "pyhost",
		Version:   "1.2.3",
		BuildDate: "2024-01-01",
		GitCommit: "abc123",
	}
	got := info.String()
	expected := "pyhost version 1.2.3 (commit: abc123, built: 2024-01-01)"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestNewCommand_HumanReadable(t *testing.T) {
	buf := captureOutput(t)
	cmd := NewCommand(Get())
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Version", "Build Date", "Git Commit", "Platform"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
		}
	}
}

func TestNewCommand_JSON(t *testing.T) {
	buf := captureOutput(t)
	if err := cliout.SetFormat("json"); err != nil {
		t.Fatal(err)
	}
	cmd := NewCommand(Get())
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var parsed Info
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("expected valid JSON, got error: %v\noutput: %s", err, buf.String())
	}
	if parsed.Name != "pyhost" {
		t.Errorf("expected name 'pyhost', got %q", parsed.Name)
	}
	if parsed.Version != "0.0.0-dev" {
		t.Errorf("expected version '0.0.0-dev', got %q", parsed.Version)
	}
}

func TestNewCommand_Quiet(t *testing.T) {
	buf := captureOutput(t)
	cmd := NewCommand(Get())
	cmd.SetArgs([]string{"--quiet"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if trimmed := strings.TrimSpace(buf.String()); trimmed != "0.0.0-dev" {
		t.Errorf("expected '0.0.0-dev', got %q", trimmed)
	}
}
