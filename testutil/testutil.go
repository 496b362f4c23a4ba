// Package testutil provides helpers for tests that spawn real child
// processes: fake interpreter scripts, output capture and file reading.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// RequirePOSIX skips the test on platforms without /bin/sh.
func RequirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// FakeInterpreter writes an executable shell script named "python" into a
// new temporary directory and returns its path. body is the script after the
// shebang line; "$@" holds the arguments the supervisor passed.
//
// Example:
//
//	py := testutil.FakeInterpreter(t, `echo ok`)
//	out, err := cmdutil.RunForeground(ctx, py, nil, dir)
func FakeInterpreter(t *testing.T, body string) string {
	t.Helper()
	RequirePOSIX(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "python")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake interpreter: %v", err)
	}
	return path
}

// SleepingInterpreter returns a fake interpreter that prints its arguments
// and then stays alive until killed.
func SleepingInterpreter(t *testing.T) string {
	t.Helper()
	return FakeInterpreter(t, `echo "started $*"
exec sleep 300`)
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// ListFiles returns the sorted base names of regular files in dir.
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names
}

// CaptureOutput captures stdout during fn. The original stdout is always
// restored.
func CaptureOutput(t *testing.T, fn func() error) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	outCh := make(chan string, 1)
	go func() {
		var output strings.Builder
		buf := make([]byte, 1024)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				output.Write(buf[:n])
			}
			if readErr != nil {
				break
			}
		}
		outCh <- output.String()
	}()

	fnErr := fn()

	if err := w.Close(); err != nil {
		t.Logf("Failed to close pipe writer: %v", err)
	}
	os.Stdout = origStdout
	output := <-outCh

	if fnErr != nil {
		t.Logf("Command error: %v", fnErr)
	}
	return output
}
