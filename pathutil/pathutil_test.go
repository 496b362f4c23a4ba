// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDevRootFrom(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "desktop", "src-tauri")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := DevRootFrom(dir)
	if err != nil {
		t.Fatalf("DevRootFrom() error = %v", err)
	}
	if got != base {
		t.Errorf("DevRootFrom() = %q, want %q", got, base)
	}
}

func TestDevRootFromNoParent(t *testing.T) {
	root := string(filepath.Separator)
	if runtime.GOOS == "windows" {
		root = `C:\`
	}

	_, err := DevRootFrom(root)
	if !errors.Is(err, ErrNoParent) {
		t.Errorf("DevRootFrom(%q) error = %v, want ErrNoParent", root, err)
	}
}

func TestDevRootFromOneLevelBelowRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix path layout")
	}
	if _, err := DevRootFrom("/tmp"); !errors.Is(err, ErrNoParent) {
		t.Errorf("DevRootFrom(/tmp) error = %v, want ErrNoParent", err)
	}
}

func TestDevRootUsesWorkingDirectory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "a", "b")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	got, err := DevRoot()
	if err != nil {
		t.Fatalf("DevRoot() error = %v", err)
	}
	// Resolve symlinks such as /tmp -> /private/tmp on macOS.
	want, _ := filepath.EvalSymlinks(base)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("DevRoot() = %q, want %q", gotResolved, want)
	}
}

func TestResolveInterpreterPrefersVenv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix venv layout")
	}
	dir := t.TempDir()
	venvPython := filepath.Join(dir, ".venv", "bin", "python3")
	if err := os.MkdirAll(filepath.Dir(venvPython), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(venvPython, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveInterpreter("python3", dir)
	if err != nil {
		t.Fatalf("ResolveInterpreter() error = %v", err)
	}
	if got != venvPython {
		t.Errorf("ResolveInterpreter() = %q, want %q", got, venvPython)
	}
}

func TestResolveInterpreterRelativePath(t *testing.T) {
	dir := t.TempDir()
	rel := filepath.Join("runtime", "py")
	if err := os.MkdirAll(filepath.Join(dir, "runtime"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, rel), nil, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveInterpreter(rel, dir)
	if err != nil {
		t.Fatalf("ResolveInterpreter() error = %v", err)
	}
	if got != filepath.Join(dir, rel) {
		t.Errorf("ResolveInterpreter() = %q, want %q", got, filepath.Join(dir, rel))
	}

	if _, err := ResolveInterpreter(filepath.Join("runtime", "missing"), dir); !errors.Is(err, ErrInterpreterNotFound) {
		t.Errorf("missing path error = %v, want ErrInterpreterNotFound", err)
	}
}

func TestResolveInterpreterFallsBackToPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh from PATH")
	}
	got, err := ResolveInterpreter("sh", t.TempDir())
	if err != nil {
		t.Fatalf("ResolveInterpreter(sh) error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResolveInterpreter(sh) = %q, want absolute path", got)
	}
}

func TestResolveInterpreterNotFound(t *testing.T) {
	_, err := ResolveInterpreter("nonexistent-python-xyz-123", t.TempDir())
	if !errors.Is(err, ErrInterpreterNotFound) {
		t.Errorf("error = %v, want ErrInterpreterNotFound", err)
	}

	_, err = ResolveInterpreter("", "")
	if !errors.Is(err, ErrInterpreterNotFound) {
		t.Errorf("empty name error = %v, want ErrInterpreterNotFound", err)
	}
}

func TestFindToolInPathEmpty(t *testing.T) {
	if got := FindToolInPath(""); got != "" {
		t.Errorf("FindToolInPath(\"\") = %q, want empty", got)
	}
}
