package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.svc.Backlog()
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), b)
			}
			printBacklog(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func printBacklog(w io.Writer, b *types.Backlog) {
	velocity := "n/a"
	if b.CurrentVelocity != nil {
		velocity = fmt.Sprintf("%.2f", *b.CurrentVelocity)
	}
	fmt.Fprintf(w, "Team capacity:    %d\n", b.TeamCapacity)
	fmt.Fprintf(w, "Current velocity: %s\n", velocity)
	fmt.Fprintf(w, "Updated:          %s\n", humanize.Time(b.UpdatedAt))

	if len(b.UserStories) == 0 {
		infoColor.Fprintln(w, "\nNo work items. Run \"sprintplan ingest <file>\" to load some.")
		return
	}

	headerColor.Fprintf(w, "\nWork items (%d, %d points)\n", len(b.UserStories), b.TotalPoints())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tPOINTS\tSPRINT\tSTATUS\tTITLE")
	for _, item := range b.UserStories {
		sprint := "-"
		if item.SprintAssigned != nil {
			sprint = strconv.Itoa(*item.SprintAssigned)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", item.ID, item.Priority, item.StoryPoints, sprint, item.Status, item.Title)
	}
	tw.Flush()

	if len(b.Sprints) > 0 {
		headerColor.Fprintln(w, "\nSprints")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SPRINT\tSTATUS\tPOINTS\tCOMPLETED\tITEMS")
		for _, s := range b.Sprints {
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%s\n",
				s.Name, s.Status, s.TotalPoints, s.Capacity, s.CompletedPoints, strings.Join(s.UserStories, ", "))
		}
		tw.Flush()
	}

	if len(b.VelocityHistory) > 0 {
		history := make([]string, len(b.VelocityHistory))
		for i, v := range b.VelocityHistory {
			history[i] = strconv.Itoa(v)
		}
		fmt.Fprintf(w, "\nVelocity history: %s\n", strings.Join(history, ", "))
	}
}
