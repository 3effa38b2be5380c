package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "List dependencies that name no work item in the backlog",
		Long:  "List dependency ids that do not match any stored work item. Unresolved dependencies never block planning.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing, err := a.svc.UnresolvedDependencies()
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), missing)
			}

			w := cmd.OutOrStdout()
			if len(missing) == 0 {
				successColor.Fprintln(w, "All dependencies resolved")
				return nil
			}
			warningColor.Fprintf(w, "%d unresolved dependencies\n", len(missing))
			for _, m := range missing {
				fmt.Fprintf(w, "  %s -> %s\n", m.ItemID, m.DependencyID)
			}
			return nil
		},
	}
}
