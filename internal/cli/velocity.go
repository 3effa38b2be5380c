package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

func newVelocityCmd(a *app) *cobra.Command {
	var report types.VelocityReport
	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Record the points completed in a sprint",
		Long: `Record a completed-sprint report. The rolling velocity is the mean of
the last three reports; from the third report on it also sets the team
capacity. Sprints are not re-planned; run "plan" for that.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.RecordVelocity(report)
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			b := result.Backlog
			if result.SprintFound {
				successColor.Fprintf(w, "Recorded %d points for %s\n", report.CompletedPoints, types.SprintName(report.SprintNumber))
			} else {
				warningColor.Fprintf(w, "Recorded %d points; %v\n", report.CompletedPoints, result.Notice)
			}
			fmt.Fprintf(w, "Velocity: %.2f (last %d of %d reports)\n",
				*b.CurrentVelocity, min(len(b.VelocityHistory), types.VelocityWindow), len(b.VelocityHistory))
			fmt.Fprintf(w, "Team capacity: %d\n", b.TeamCapacity)
			return nil
		},
	}
	cmd.Flags().IntVar(&report.SprintNumber, "sprint", 0, "sprint number")
	cmd.Flags().IntVar(&report.CompletedPoints, "completed", 0, "story points completed")
	cmd.Flags().IntVar(&report.TotalPoints, "total", 0, "story points that were planned")
	cmd.Flags().StringVar(&report.Feedback, "feedback", "", "free-form retrospective note")
	cmd.MarkFlagRequired("sprint")
	cmd.MarkFlagRequired("completed")
	return cmd
}
