// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package pathutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNoParent is returned when a directory has no parent to move up to.
	ErrNoParent = errors.New("cannot get parent directory")
	// ErrInterpreterNotFound is returned when no interpreter could be located.
	ErrInterpreterNotFound = errors.New("interpreter not found")
)

// InstallSuggestion is shown when no interpreter can be found.
const InstallSuggestion = "Install from https://www.python.org/downloads/"

// DevRoot returns the application root: two levels above the current
// working directory, where the desktop shell keeps its Python sources.
func DevRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return DevRootFrom(cwd)
}

// DevRootFrom returns the directory two levels above dir.
func DevRootFrom(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	current := abs
	for i := 0; i < 2; i++ {
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w: %s", ErrNoParent, current)
		}
		current = parent
	}
	return current, nil
}

// ResolveInterpreter locates the interpreter executable.
//
// A name containing a path separator is resolved against workDir and must
// exist. A bare name is looked up first in the virtual environment and
// embedded runtime directories under workDir, then in PATH.
func ResolveInterpreter(name, workDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInterpreterNotFound)
	}

	if strings.ContainsAny(name, `/\`) {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInterpreterNotFound, path, err)
		}
		return path, nil
	}

	for _, candidate := range localCandidates(name, workDir) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if path := FindToolInPath(name); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrInterpreterNotFound, name, InstallSuggestion)
}

// localCandidates lists interpreter locations inside workDir in search order.
func localCandidates(name, workDir string) []string {
	if workDir == "" {
		return nil
	}
	exe := executableName(name)
	bin := "bin"
	if runtime.GOOS == "windows" {
		bin = "Scripts"
	}
	return []string{
		filepath.Join(workDir, ".venv", bin, exe),
		filepath.Join(workDir, "venv", bin, exe),
		filepath.Join(workDir, "python", exe),
		filepath.Join(workDir, "python", "bin", exe),
	}
}

// FindToolInPath searches for an executable in the system PATH.
// Returns the full path to the executable if found, empty string otherwise.
func FindToolInPath(toolName string) string {
	if toolName == "" {
		return ""
	}
	path, err := exec.LookPath(executableName(toolName))
	if err != nil {
		return ""
	}
	return path
}

// executableName adds .exe on Windows if not present.
func executableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}
