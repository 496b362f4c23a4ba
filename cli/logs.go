package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/jongio/pyhost/cliout"
	"github.com/jongio/pyhost/supervisor"
)

// openFile is replaced in tests.
var openFile = browser.OpenFile

func newLogsCommand(opts *globalOptions) *cobra.Command {
	var (
		stderr bool
		open   bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs <role>",
		Short: "Print or open the log file of a role",
		Example: `  pyhost logs server
  pyhost logs executor --stderr --lines 50
  pyhost logs server --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := supervisor.New(opts.cfg)
			if err != nil {
				return err
			}
			outPath, errPath, err := sup.RoleLogs(args[0], opts.workDir)
			if err != nil {
				return err
			}
			path := outPath
			if stderr {
				path = errPath
			}

			if open {
				browser.Stdout = cmd.ErrOrStderr()
				if err := openFile(path); err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read log: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tail(string(data), lines))
			return err
		},
	}

	cmd.Flags().BoolVar(&stderr, "stderr", false, "show the error log")
	cmd.Flags().BoolVar(&open, "open", false, "open the log with the system viewer")
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "show only the last n lines (0 for all)")
	return cmd
}

// tail returns the last n lines of s; n <= 0 returns s.
func tail(s string, n int) string {
	if n <= 0 {
		return s
	}
	trimmed := strings.TrimSuffix(s, "\n")
	parts := strings.Split(trimmed, "\n")
	if len(parts) <= n {
		return s
	}
	return strings.Join(parts[len(parts)-n:], "\n") + "\n"
}

func newRolesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the configured roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type roleInfo struct {
				Name   string `json:"name"`
				Module string `json:"module"`
				Log    string `json:"log"`
			}

			sup, err := supervisor.New(opts.cfg)
			if err != nil {
				return err
			}
			var infos []roleInfo
			rows := make([]cliout.TableRow, 0, len(sup.Roles()))
			for _, name := range sup.Roles() {
				role, _ := opts.cfg.Role(name)
				outPath, _, err := sup.RoleLogs(name, opts.workDir)
				if err != nil {
					return err
				}
				infos = append(infos, roleInfo{Name: name, Module: role.Module, Log: outPath})
				rows = append(rows, cliout.TableRow{"ROLE": name, "MODULE": role.Module, "LOG": outPath})
			}
			return cliout.Print(infos, func() {
				cliout.Table([]string{"ROLE", "MODULE", "LOG"}, rows)
			})
		},
	}
}
