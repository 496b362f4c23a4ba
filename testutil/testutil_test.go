package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFakeInterpreterIsExecutable(t *testing.T) {
	py := FakeInterpreter(t, `echo "args: $*"`)

	out, err := exec.Command(py, "-m", "server").Output()
	if err != nil {
		t.Fatalf("running fake interpreter: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "args: -m server" {
		t.Errorf("output = %q, want %q", got, "args: -m server")
	}
}

func TestListFilesAndReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.log"), []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.log"), []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := ListFiles(t, dir)
	if len(files) != 2 || files[0] != "a.log" || files[1] != "b.log" {
		t.Errorf("ListFiles() = %v, want [a.log b.log]", files)
	}
	if got := ReadFile(t, filepath.Join(dir, "a.log")); got != "one" {
		t.Errorf("ReadFile() = %q, want %q", got, "one")
	}
}

func TestCaptureOutput(t *testing.T) {
	output := CaptureOutput(t, func() error {
		fmt.Println("captured line")
		return nil
	})
	if !strings.Contains(output, "captured line") {
		t.Errorf("CaptureOutput() = %q, want captured line", output)
	}
}
