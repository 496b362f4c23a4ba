package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jongio/pyhost/cliout"
	"github.com/jongio/pyhost/pathutil"
)

func newDevRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devroot",
		Short: "Print the application root (two levels above the current directory)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := pathutil.DevRoot()
			if err != nil {
				return err
			}
			if cliout.IsJSON() {
				return cliout.PrintJSON(map[string]string{"devRoot": root})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), root)
			return err
		},
	}
}
