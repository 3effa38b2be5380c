package cli

import (
	"github.com/spf13/cobra"
)

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Clear(); err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]bool{"cleared": true})
			}
			successColor.Fprintln(cmd.OutOrStdout(), "Backlog cleared")
			return nil
		},
	}
}
