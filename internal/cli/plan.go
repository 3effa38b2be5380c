package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sprintplan/internal/backlog"
)

func newPlanCmd(a *app) *cobra.Command {
	var req backlog.PlanRequest
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Re-order the stored items and re-allocate them into sprints",
		Long: `Re-run ordering and allocation over the stored work items. Without
--capacity the current velocity is used when known, otherwise the team
capacity. An explicit --capacity takes precedence over the current velocity
for this pass and becomes the new team capacity; later passes without it
go back to the current velocity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.Plan(req)
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printPlan(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVar(&req.TeamCapacity, "capacity", 0, "story points per sprint")
	cmd.Flags().IntVar(&req.NumSprints, "sprints", 0, "maximum number of sprints (0 for no limit)")
	return cmd
}

func printPlan(w io.Writer, r backlog.PlanResult) {
	headerColor.Fprintf(w, "%d sprints, %d points, capacity %d\n",
		r.Allocation.TotalSprints, r.Allocation.TotalPoints, r.Capacity)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPRINT\tPOINTS\tUTILIZATION\tITEMS")
	for _, s := range r.Allocation.Sprints {
		fmt.Fprintf(tw, "%s\t%d/%d\t%.0f%%\t%s\n",
			s.Name, s.TotalPoints, s.Capacity, s.Utilization(), strings.Join(s.UserStories, ", "))
	}
	tw.Flush()

	if len(r.Unassigned) > 0 {
		warningColor.Fprintf(w, "Unassigned (sprint limit reached): %s\n", strings.Join(r.Unassigned, ", "))
	}
}
