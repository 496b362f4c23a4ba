package mcphost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvProjectDir overrides the project directory tool calls may use.
const EnvProjectDir = "PYHOST_PROJECT_DIR"

// ValidateWorkDir ensures a working directory sent by the host is safe to run in:
//   - Resolves to an absolute path
//   - No path traversal (..)
//   - Exists and is a directory
//   - Must be within allowed base directories, if any are given
//
// An empty path is returned unchanged so the supervisor default applies.
func ValidateWorkDir(path string, allowedBases ...string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path traversal not allowed")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("working directory %q: %w", filepath.Base(path), err)
	}
	info, err := os.Stat(realPath)
	if err != nil {
		return "", fmt.Errorf("working directory %q: %w", filepath.Base(path), err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %q is not a directory", filepath.Base(path))
	}

	if len(allowedBases) > 0 {
		allowed := false
		for _, base := range allowedBases {
			absBase, err := filepath.Abs(base)
			if err != nil {
				continue
			}
			if realBase, err := filepath.EvalSymlinks(absBase); err == nil {
				absBase = realBase
			}
			absBase = filepath.Clean(absBase)
			if strings.HasPrefix(realPath, absBase+string(filepath.Separator)) || realPath == absBase {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", fmt.Errorf("path %q is outside allowed directories", filepath.Base(path))
		}
	}

	return realPath, nil
}

// GetProjectDir returns the project directory from the specified environment variable,
// falling back to the current working directory.
func GetProjectDir(envVar string) (string, error) {
	dir := os.Getenv(envVar)
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}

	return filepath.Clean(absDir), nil
}
