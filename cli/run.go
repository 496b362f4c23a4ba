package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jongio/pyhost/cliout"
	"github.com/jongio/pyhost/cmdutil"
	"github.com/jongio/pyhost/supervisor"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var (
		background bool
		exe        string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] [--] [args...]",
		Short: "Run the interpreter with the given arguments",
		Long: `Run the interpreter with the given arguments.

In the foreground the interpreter's stdout is printed when it exits. A
non-zero exit prints its stderr and exits with the same code.

With --background the process is started detached, its output is written to
timestamped files under <cwd>/log and its pid is printed.`,
		Example: `  pyhost run -- script.py --flag
  pyhost run --background -- -m worker job-42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := supervisor.New(opts.cfg)
			if err != nil {
				return err
			}

			if background {
				pid, err := sup.RunBackground(cmd.Context(), exe, opts.workDir, args)
				if err != nil {
					return err
				}
				return cliout.Print(map[string]string{"pid": pid}, func() {
					cliout.Success("started background process %s", pid)
					cliout.Hint(fmt.Sprintf("output is written to %s", filepath.Join(opts.workDir, opts.cfg.LogDir)))
				})
			}

			out, err := sup.RunForeground(cmd.Context(), exe, opts.workDir, args)
			var exitErr *cmdutil.ExitError
			if errors.As(err, &exitErr) {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), exitErr.Stderr)
				return &ExitCodeError{Code: exitErr.ExitCode}
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVarP(&background, "background", "b", false, "start detached with output captured in log files")
	cmd.Flags().StringVar(&exe, "exe", "", "interpreter executable (default from config)")
	return cmd
}
