package launcher

import (
	"errors"
	"fmt"
)

// Stage identifies where a launch failed.
type Stage string

const (
	StageTimestamp Stage = "timestamp"
	StageLogDir    Stage = "log-dir"
	StageLogFile   Stage = "log-file"
	StageSpawn     Stage = "spawn"
)

// ErrTimestampUnavailable is returned when the clock reads before the epoch.
var ErrTimestampUnavailable = errors.New("timestamp unavailable")

// LaunchError describes a failed launch. Log setup failures happen before
// any spawn is attempted.
type LaunchError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *LaunchError) Error() string {
	switch e.Stage {
	case StageTimestamp:
		return fmt.Sprintf("cannot build log file name: %v", e.Err)
	case StageLogDir:
		return fmt.Sprintf("failed to create log directory %s: %v", e.Path, e.Err)
	case StageLogFile:
		return fmt.Sprintf("failed to create log file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("failed to start process %s: %v", e.Path, e.Err)
	}
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// StageOf returns the failure stage of err, or "" if err is not a LaunchError.
func StageOf(err error) Stage {
	var le *LaunchError
	if errors.As(err, &le) {
		return le.Stage
	}
	return ""
}
