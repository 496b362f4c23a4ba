package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jongio/pyhost/cmdutil"
	"github.com/jongio/pyhost/config"
	"github.com/jongio/pyhost/launcher"
	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/metrics"
	"github.com/jongio/pyhost/notify"
	"github.com/jongio/pyhost/pathutil"
	"github.com/jongio/pyhost/procutil"
	"github.com/jongio/pyhost/registry"
)

// Status is the answer to a role status query.
type Status struct {
	IsRunning bool    `json:"is_running"`
	Pid       *string `json:"pid,omitempty"`
}

// Supervisor runs interpreter processes on behalf of a host application.
type Supervisor struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	anon     *registry.AnonymousSet
	named    *registry.NamedTable
	notifier notify.Notifier
	limiter  *rate.Limiter
	log      *logutil.ComponentLogger

	// lifecycle is read-held by launches that register a process and
	// write-held by Shutdown, so no process is registered after the kill.
	lifecycle sync.RWMutex
	closed    atomic.Bool
	once      sync.Once

	mu        sync.Mutex
	roleLocks map[string]*sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLauncher replaces the default launcher.
func WithLauncher(l *launcher.Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// WithNotifier sets the notifier used when a role is found to have exited.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Supervisor) {
		s.notifier = n
	}
}

// New creates a Supervisor. cfg is validated; nil means config.Default().
func New(cfg *config.Config, opts ...Option) (*Supervisor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Supervisor{
		cfg:       cfg,
		anon:      registry.NewAnonymousSet(),
		named:     registry.NewNamedTable(),
		notifier:  notify.Noop{},
		log:       logutil.NewLogger("supervisor"),
		roleLocks: make(map[string]*sync.Mutex),
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.launcher == nil {
		s.launcher = launcher.New(launcher.WithLogDir(cfg.LogDir), launcher.WithEnv(cfg.Env...))
	}
	if cfg.LaunchRateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.LaunchRateLimit), cfg.LaunchBurst)
	}

	s.named.OnExit(s.roleExited)
	return s, nil
}

// RunForeground runs the interpreter to completion and returns its stdout.
// A non-zero exit returns a *cmdutil.ExitError whose message is the
// captured stderr. The process is not tracked.
func (s *Supervisor) RunForeground(ctx context.Context, exe, dir string, args []string) (string, error) {
	if s.closed.Load() {
		return "", ErrShuttingDown
	}
	exe, dir = s.resolve(exe, dir)

	start := time.Now()
	out, err := cmdutil.RunForeground(ctx, exe, args, dir)
	metrics.ObserveForeground(time.Since(start))

	if err != nil {
		metrics.RecordLaunchFailure(metrics.KindForeground, foregroundStage(err))
		s.log.Debug("foreground run failed", "executable", exe, "args", args, "error", err)
		return "", err
	}
	metrics.RecordLaunch(metrics.KindForeground, "")
	return out, nil
}

func foregroundStage(err error) string {
	var exitErr *cmdutil.ExitError
	switch {
	case errors.As(err, &exitErr):
		return "exit"
	case errors.Is(err, cmdutil.ErrInvalidUTF8):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return string(launcher.StageSpawn)
	}
}

// RunBackground starts the interpreter with timestamped log files, tracks it
// until shutdown and returns its process id as a decimal string.
func (s *Supervisor) RunBackground(ctx context.Context, exe, dir string, args []string) (string, error) {
	if s.closed.Load() {
		return "", ErrShuttingDown
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			metrics.RecordLaunchFailure(metrics.KindBackground, "rate-limit")
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed.Load() {
		return "", ErrShuttingDown
	}

	exe, dir = s.resolve(exe, dir)
	launched, err := s.launcher.Start(ctx, launcher.Request{
		Executable: exe,
		Dir:        dir,
		Args:       args,
		Naming:     launcher.NamingTimestamped,
	})
	if err != nil {
		metrics.RecordLaunchFailure(metrics.KindBackground, string(launcher.StageOf(err)))
		return "", err
	}

	s.anon.Add(launched.Process)
	metrics.RecordLaunch(metrics.KindBackground, "")
	s.log.Info("background process started", "pid", launched.Pid(), "launch", launched.ID, "stdout", launched.StdoutPath)
	return strconv.Itoa(launched.Pid()), nil
}

// StartServer starts the server role if it is not already running.
func (s *Supervisor) StartServer(ctx context.Context, exe, dir string) (string, error) {
	return s.StartRole(ctx, config.RoleServer, exe, dir)
}

// StartExecutor starts the executor role if it is not already running.
func (s *Supervisor) StartExecutor(ctx context.Context, exe, dir string) (string, error) {
	return s.StartRole(ctx, config.RoleExecutor, exe, dir)
}

// StartRole starts role if it has no live process and returns the pid of
// the running process either way.
func (s *Supervisor) StartRole(ctx context.Context, role, exe, dir string) (string, error) {
	if s.closed.Load() {
		return "", ErrShuttingDown
	}
	def, ok := s.cfg.Role(role)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed.Load() {
		return "", ErrShuttingDown
	}

	lock := s.roleLock(role)
	lock.Lock()
	defer lock.Unlock()

	log := s.log.WithRole(role)
	if s.named.IsRunning(role) {
		pid, ok := s.named.Pid(role)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrPidUnavailable, role)
		}
		log.Debug("role already running", "pid", pid)
		return strconv.Itoa(pid), nil
	}

	exe, dir = s.resolve(exe, dir)
	launched, err := s.launchRole(ctx, role, launcher.Request{
		Executable: exe,
		Dir:        dir,
		Args:       def.Args(),
		Naming:     launcher.NamingRole,
	})
	if err != nil {
		stage := string(launcher.StageOf(err))
		if errors.Is(err, ErrBreakerOpen) {
			stage = "breaker"
		}
		metrics.RecordLaunchFailure(metrics.KindRole, stage)
		log.Error("failed to start role", "error", err)
		return "", err
	}

	s.named.Add(role, launched.Process)
	metrics.RecordLaunch(metrics.KindRole, role)
	log.Info("role started", "pid", launched.Pid(), "launch", launched.ID, "stdout", launched.StdoutPath)
	return strconv.Itoa(launched.Pid()), nil
}

func (s *Supervisor) launchRole(ctx context.Context, role string, req launcher.Request) (*launcher.Launched, error) {
	breaker := s.breaker(role)
	if breaker == nil {
		return s.launcher.Start(ctx, req)
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		return s.launcher.Start(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %w", ErrBreakerOpen, role, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*launcher.Launched), nil
}

// ServerStatus reports whether the server role is running.
func (s *Supervisor) ServerStatus() Status {
	return s.RoleStatus(config.RoleServer)
}

// ExecutorStatus reports whether the executor role is running.
func (s *Supervisor) ExecutorStatus() Status {
	return s.RoleStatus(config.RoleExecutor)
}

// RoleStatus reports whether role is running. A role found to have exited
// is forgotten as a side effect.
func (s *Supervisor) RoleStatus(role string) Status {
	if !s.named.IsRunning(role) {
		return Status{}
	}
	st := Status{IsRunning: true}
	if pid, ok := s.named.Pid(role); ok {
		p := strconv.Itoa(pid)
		st.Pid = &p
	}
	return st
}

// StopRole kills the process for role. It returns false if the role was not
// tracked or could not be killed.
func (s *Supervisor) StopRole(role string) bool {
	lock := s.roleLock(role)
	lock.Lock()
	defer lock.Unlock()
	return s.named.Kill(role)
}

// Roles returns the configured role names.
func (s *Supervisor) Roles() []string {
	return s.cfg.RoleNames()
}

// RoleLogs returns the stdout and stderr log paths used by role in dir.
func (s *Supervisor) RoleLogs(role, dir string) (string, string, error) {
	def, ok := s.cfg.Role(role)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	logDir := s.launcher.LogDir(s.resolveDir(dir))
	outName, errName := launcher.RoleLogNames(launcher.Identifier(def.Args()))
	return filepath.Join(logDir, outName), filepath.Join(logDir, errName), nil
}

// DevRoot returns the application root directory.
func (s *Supervisor) DevRoot() (string, error) {
	return pathutil.DevRoot()
}

// Shutdown kills every tracked process. Only the first call does work;
// later calls return nil. Launches requested afterwards fail with
// ErrShuttingDown.
func (s *Supervisor) Shutdown() []registry.KillResult {
	var results []registry.KillResult
	s.once.Do(func() {
		s.lifecycle.Lock()
		s.closed.Store(true)
		s.log.Info("shutting down", "background", s.anon.Len(), "roles", len(s.named.Roles()))
		results = append(results, s.anon.KillAll()...)
		results = append(results, s.named.KillAll()...)
		s.lifecycle.Unlock()

		if err := s.notifier.Close(); err != nil {
			s.log.Warn("failed to close notifier", "error", err)
		}
	})
	return results
}

// Closed reports whether Shutdown has run.
func (s *Supervisor) Closed() bool {
	return s.closed.Load()
}

// resolve fills in the configured interpreter and working directory.
func (s *Supervisor) resolve(exe, dir string) (string, string) {
	dir = s.resolveDir(dir)
	if exe == "" {
		exe = s.cfg.Interpreter
		// An unresolved name is still passed through so the spawn reports it.
		if path, err := pathutil.ResolveInterpreter(exe, dir); err == nil {
			exe = path
		}
	}
	return exe, dir
}

func (s *Supervisor) resolveDir(dir string) string {
	if dir == "" {
		dir = s.cfg.WorkingDir
	}
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			dir = cwd
		}
	}
	return dir
}

func (s *Supervisor) roleLock(role string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.roleLocks[role]
	if !ok {
		lock = &sync.Mutex{}
		s.roleLocks[role] = lock
	}
	return lock
}

func (s *Supervisor) breaker(role string) *gobreaker.CircuitBreaker {
	bc := s.cfg.CircuitBreaker
	if !bc.Enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[role]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        role,
		MaxRequests: 1,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(bc.Failures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.RecordCircuitBreakerState(name, to)
			s.log.Warn("role start circuit breaker changed state", "role", name, "from", from.String(), "to", to.String())
		},
	})
	s.breakers[role] = b
	return b
}

// roleExited runs outside the table lock when a liveness check drops a role.
func (s *Supervisor) roleExited(role string, pid int, status procutil.Status) {
	s.log.Warn("role process exited", "role", role, "pid", pid, "exitCode", status.ExitCode)
	if !s.cfg.Notifications {
		return
	}
	go func() {
		if err := s.notifier.Send(context.Background(), notify.RoleExited(role, pid, status.ExitCode)); err != nil {
			s.log.Debug("failed to send notification", "role", role, "error", err)
		}
	}()
}
