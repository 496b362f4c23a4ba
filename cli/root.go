// Package cli implements the pyhost command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jongio/pyhost/cliout"
	"github.com/jongio/pyhost/config"
	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/version"
)

// ExitCodeError carries the exit code of a foreground run whose stderr was
// already written.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	workDir    string
	output     string
	logFormat  string
	debug      bool

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "pyhost",
		Short: "Run and supervise Python processes for a desktop host",
		Long: `pyhost launches Python interpreter processes on behalf of a host application.

It runs scripts in the foreground or background, keeps singleton server and
executor roles alive, captures their output under <cwd>/log, and kills
everything it started when the host exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default <cwd>/.pyhost/config.yaml)")
	flags.StringVarP(&opts.workDir, "cwd", "C", "", "working directory for launches and logs")
	flags.StringVarP(&opts.output, "output", "o", "default", "output format: default, json")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text, json (overrides config)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(opts),
		newServeCommand(opts),
		newLogsCommand(opts),
		newRolesCommand(opts),
		newDevRootCommand(),
		version.NewCommand(version.Get()),
		newMetadataCommand("pyhost", version.Version),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		var exitErr *ExitCodeError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		cliout.SetOutput(os.Stderr)
		cliout.Error("%v", err)
		return 1
	}
	return 0
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	if err := cliout.SetFormat(o.output); err != nil {
		return err
	}
	cliout.SetOutput(cmd.OutOrStdout())

	if o.workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		o.workDir = cwd
	}
	abs, err := filepath.Abs(o.workDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", o.workDir, err)
	}
	o.workDir = abs

	path := o.configPath
	if path == "" {
		path = config.DefaultPath(o.workDir)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = o.workDir
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	o.cfg = cfg

	level := logutil.ParseLevel(cfg.LogLevel)
	if o.debug || os.Getenv(logutil.EnvDebug) == "true" {
		level = logutil.LevelDebug
	}
	logutil.Configure(cmd.ErrOrStderr(), level, cfg.LogFormat == config.LogFormatJSON)
	logutil.Debug("configuration loaded", "path", path, "workDir", o.workDir)
	return nil
}
