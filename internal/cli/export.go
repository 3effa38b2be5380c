package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sprintplan/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "export <markdown|csv|json>",
		Short:     "Write the backlog to a timestamped file in the exports directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.Markdown), string(export.CSV), string(export.JSON)},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(args[0])
			if err != nil {
				return userErr(err)
			}

			path, err := a.svc.Export(f, a.exportsDir)
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{"format": string(f), "path": path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
