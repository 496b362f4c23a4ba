// Package launcher starts interpreter processes whose output is captured in
// per-launch log files.
//
// Every launch writes stdout and stderr to two files in a log directory
// beneath the working directory. Role launches reuse fixed names so a
// relaunch overwrites the previous run; ad-hoc background launches get
// timestamped names so nothing is overwritten.
package launcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/procutil"
)

const (
	// DefaultLogDir is the log directory name inside the working directory.
	DefaultLogDir = "log"
	// DirPermission is used when creating the log directory (rwxr-x---).
	DirPermission = 0750
	// FilePermission is used for log files (rw-r--r--).
	FilePermission = 0644

	// maxSeq bounds the same-second disambiguation suffix.
	maxSeq = 1000
)

// EncodingEnv forces UTF-8 stdio in the Python child.
const EncodingEnv = "PYTHONIOENCODING=utf-8"

// Naming selects how log files are named.
type Naming int

const (
	// NamingTimestamped gives each launch a unique log pair.
	NamingTimestamped Naming = iota
	// NamingRole reuses one log pair per identifier, truncated on relaunch.
	NamingRole
)

// Request describes one launch.
type Request struct {
	Executable string
	Dir        string
	Args       []string
	Naming     Naming
}

// Launched is a started process together with its log files.
type Launched struct {
	Process    *procutil.Process
	ID         string
	StdoutPath string
	StderrPath string
}

// Pid returns the OS process identifier.
func (l *Launched) Pid() int {
	return l.Process.Pid()
}

// Launcher spawns processes. It holds no per-launch state and is safe for
// concurrent use.
type Launcher struct {
	logDir string
	env    []string
	now    func() time.Time
	log    *logutil.ComponentLogger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogDir sets the log directory name relative to the working directory.
func WithLogDir(name string) Option {
	return func(l *Launcher) {
		if name != "" {
			l.logDir = name
		}
	}
}

// WithEnv adds KEY=VALUE pairs to every child environment.
func WithEnv(env ...string) Option {
	return func(l *Launcher) {
		l.env = append(l.env, env...)
	}
}

// WithClock overrides the time source used for timestamped names.
func WithClock(now func() time.Time) Option {
	return func(l *Launcher) {
		l.now = now
	}
}

// New creates a Launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		logDir: DefaultLogDir,
		now:    time.Now,
		log:    logutil.NewLogger("launcher"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogDir returns the absolute-or-relative log directory for a working directory.
func (l *Launcher) LogDir(workDir string) string {
	if filepath.IsAbs(l.logDir) {
		return l.logDir
	}
	return filepath.Join(workDir, l.logDir)
}

// Start creates the log files and spawns the process. ctx only gates the
// spawn: a started process is not tied to ctx and outlives it.
func (l *Launcher) Start(ctx context.Context, req Request) (*Launched, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := Identifier(req.Args)
	launchID := uuid.NewString()
	log := l.log.WithFields("launch", launchID, "identifier", id)

	logDir := l.LogDir(req.Dir)
	if err := os.MkdirAll(logDir, DirPermission); err != nil {
		return nil, &LaunchError{Stage: StageLogDir, Path: logDir, Err: err}
	}

	stdout, stderr, err := l.createLogs(logDir, id, req.Naming)
	if err != nil {
		return nil, err
	}
	// The child holds its own descriptors once started.
	defer func() {
		_ = stdout.Close()
		_ = stderr.Close()
	}()

	cmd := exec.Command(req.Executable, req.Args...)
	cmd.Dir = req.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(append(os.Environ(), EncodingEnv), l.env...)
	procutil.ConfigureSysProcAttr(cmd)

	proc, err := procutil.Start(cmd)
	if err != nil {
		log.Error("failed to start process", "executable", req.Executable, "dir", req.Dir, "error", err)
		return nil, &LaunchError{Stage: StageSpawn, Path: req.Executable, Err: err}
	}

	log.Debug("process started", "pid", proc.Pid(), "args", req.Args, "stdout", stdout.Name())
	return &Launched{
		Process:    proc,
		ID:         launchID,
		StdoutPath: stdout.Name(),
		StderrPath: stderr.Name(),
	}, nil
}

func (l *Launcher) createLogs(dir, id string, naming Naming) (*os.File, *os.File, error) {
	if naming == NamingRole {
		outName, errName := RoleLogNames(id)
		return openPair(filepath.Join(dir, outName), filepath.Join(dir, errName), os.O_TRUNC)
	}

	now := l.now()
	if now.Unix() < 0 {
		return nil, nil, &LaunchError{Stage: StageTimestamp, Err: ErrTimestampUnavailable}
	}

	for seq := 0; seq < maxSeq; seq++ {
		outName, errName := TimestampedLogNames(id, now.Unix(), seq)
		stdout, stderr, err := openPair(filepath.Join(dir, outName), filepath.Join(dir, errName), os.O_EXCL)
		if err == nil {
			return stdout, stderr, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, nil, err
		}
	}
	outName, _ := TimestampedLogNames(id, now.Unix(), maxSeq)
	return nil, nil, &LaunchError{Stage: StageLogFile, Path: filepath.Join(dir, outName), Err: fs.ErrExist}
}

// openPair creates both files with the extra open flag. If the second file
// fails, the first is closed and, for exclusive opens, removed again.
func openPair(outPath, errPath string, flag int) (*os.File, *os.File, error) {
	stdout, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|flag, FilePermission)
	if err != nil {
		return nil, nil, &LaunchError{Stage: StageLogFile, Path: outPath, Err: err}
	}

	stderr, err := os.OpenFile(errPath, os.O_WRONLY|os.O_CREATE|flag, FilePermission)
	if err != nil {
		_ = stdout.Close()
		if flag&os.O_EXCL != 0 {
			_ = os.Remove(outPath)
		}
		return nil, nil, &LaunchError{Stage: StageLogFile, Path: errPath, Err: err}
	}
	return stdout, stderr, nil
}
