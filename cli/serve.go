package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/jongio/pyhost/cliout"
	"github.com/jongio/pyhost/config"
	"github.com/jongio/pyhost/launcher"
	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/mcphost"
	"github.com/jongio/pyhost/metrics"
	"github.com/jongio/pyhost/notify"
	"github.com/jongio/pyhost/supervisor"
)

// LockFileName is the single-instance lock inside the log directory.
const LockFileName = "pyhost.lock"

// ErrAlreadyRunning is returned when another serve holds the lock.
var ErrAlreadyRunning = errors.New("pyhost is already serving this directory")

const (
	mcpBurst           = 20
	mcpRefillPerSecond = 5.0
	metricsStopTimeout = 5 * time.Second
)

type serveOptions struct {
	roles       []string
	exe         string
	noMCP       bool
	metrics     bool
	allowedDirs []string
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the supervisor for an application over MCP on stdio",
		Long: `Serve the supervisor commands as MCP tools on stdin/stdout.

Roles named with --role are started first. The server runs until stdin is
closed or the process receives SIGINT/SIGTERM; every process it started is
then killed.`,
		Example: `  pyhost serve --role server --role executor
  pyhost serve --no-mcp --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, so)
		},
	}

	cmd.Flags().StringSliceVar(&so.roles, "role", nil, "role to start on launch (repeatable)")
	cmd.Flags().StringVar(&so.exe, "exe", "", "interpreter executable for roles (default from config)")
	cmd.Flags().BoolVar(&so.noMCP, "no-mcp", false, "do not serve MCP; wait for a signal instead")
	cmd.Flags().BoolVar(&so.metrics, "metrics", false, "serve Prometheus metrics (overrides config)")
	cmd.Flags().StringSliceVar(&so.allowedDirs, "allow-dir", nil, "restrict the cwd tool argument to these directories")
	return cmd
}

// acquireLock takes the single-instance lock for the log directory.
func acquireLock(logDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(logDir, launcher.DirPermission); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	lock := flock.New(filepath.Join(logDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", ErrAlreadyRunning, lock.Path())
	}
	return lock, nil
}

// allowedDirs returns the directories MCP tool calls may run in. Without
// --allow-dir, PYHOST_PROJECT_DIR restricts calls to that project.
func allowedDirs(flagDirs []string) ([]string, error) {
	if len(flagDirs) > 0 || os.Getenv(mcphost.EnvProjectDir) == "" {
		return flagDirs, nil
	}
	dir, err := mcphost.GetProjectDir(mcphost.EnvProjectDir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project directory %s is not a directory", dir)
	}
	return []string{dir}, nil
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.Notifications {
		return notify.Noop{}
	}
	n, err := notify.New(notify.DefaultConfig())
	if err != nil {
		logutil.Warn("desktop notifications unavailable", "error", err)
		return notify.Noop{}
	}
	return n
}

func runServe(cmd *cobra.Command, opts *globalOptions, so *serveOptions) (err error) {
	cfg := opts.cfg
	log := logutil.NewLogger("serve")

	// stdout carries MCP traffic.
	cliout.SetOutput(cmd.ErrOrStderr())

	l := launcher.New(launcher.WithLogDir(cfg.LogDir), launcher.WithEnv(cfg.Env...))
	lock, err := acquireLock(l.LogDir(opts.workDir))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	sup, err := supervisor.New(cfg, supervisor.WithLauncher(l), supervisor.WithNotifier(newNotifier(cfg)))
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := shutdown(sup, log); err == nil {
			err = shutdownErr
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled || so.metrics {
		server := metrics.CreateMetricsServer(cfg.Metrics.Port)
		go func() {
			if err := metrics.ServeMetrics(server); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsStopTimeout)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", "addr", server.Addr)
	}

	for _, role := range so.roles {
		pid, err := sup.StartRole(ctx, role, so.exe, opts.workDir)
		if err != nil {
			cliout.Warning("failed to start %s: %v", role, err)
			continue
		}
		cliout.Success("%s running (pid %s)", role, pid)
	}

	if so.noMCP {
		cliout.Info("waiting for SIGINT or SIGTERM")
		<-ctx.Done()
	} else {
		allowed, err := allowedDirs(so.allowedDirs)
		if err != nil {
			return err
		}
		log.Info("serving MCP on stdio", "allowedDirs", allowed)
		mcpOpts := mcphost.Options{
			AllowedDirs: allowed,
			Limiter:     mcphost.NewRateLimiter(mcpBurst, mcpRefillPerSecond),
		}
		if err := mcphost.Serve(ctx, sup, mcpOpts, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			log.Error("MCP server stopped", "error", err)
		}
	}

	return nil
}

// shutdown runs the exit hook and reports processes that could not be killed.
func shutdown(sup *supervisor.Supervisor, log *logutil.ComponentLogger) error {
	failed := 0
	for _, r := range sup.Shutdown() {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("shutdown: failed to kill %d process(es)", failed)
	}
	log.Info("shutdown complete")
	return nil
}
