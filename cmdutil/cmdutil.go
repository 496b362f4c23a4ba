// Package cmdutil runs a process to completion and captures its output in
// memory. It is used for foreground interpreter runs that are not tracked by
// any registry.
package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	"github.com/jongio/pyhost/procutil"
)

// WaitDelay bounds how long a cancelled run waits for its output pipes to
// close after the process group was killed.
const WaitDelay = 2 * time.Second

// ErrInvalidUTF8 is returned when captured output cannot be decoded as text.
var ErrInvalidUTF8 = errors.New("output is not valid UTF-8")

// ExitError is returned when the process exits with a non-zero status.
// Its message is the captured stderr, unmodified, so hosts can show it
// verbatim.
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return e.Stderr
}

// RunForeground runs name with args in dir, waits for it to finish and
// returns its stdout. A non-zero exit yields an *ExitError carrying stderr.
// There is no timeout; cancelling ctx kills the process and everything it
// started in its process group.
func RunForeground(ctx context.Context, name string, args []string, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	procutil.ConfigureSysProcAttr(cmd)
	cmd.Cancel = func() error {
		return procutil.KillGroup(cmd)
	}
	cmd.WaitDelay = WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("process %s canceled: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		if !utf8.Valid(stdout.Bytes()) {
			return "", fmt.Errorf("failed to decode stdout: %w", ErrInvalidUTF8)
		}
		return stdout.String(), nil
	case errors.As(err, &exitErr):
		if !utf8.Valid(stderr.Bytes()) {
			return "", fmt.Errorf("failed to decode stderr: %w", ErrInvalidUTF8)
		}
		return "", &ExitError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	default:
		return "", fmt.Errorf("failed to execute process %s in %q: %w", name, dir, err)
	}
}
