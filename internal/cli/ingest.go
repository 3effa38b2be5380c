package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sprintplan/internal/ingest"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		capacity int
		format   string
	)
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Replace the backlog with work items from a JSON or YAML file",
		Long: `Read work items from <file> ("-" for stdin), validate them, order them,
and allocate them into sprints. The stored backlog is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ingest.FormatForPath(args[0])
			if format != "" {
				parsed, err := ingest.ParseFormat(format)
				if err != nil {
					return userErr(err)
				}
				f = parsed
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return userErr(fmt.Errorf("open %s: %w", args[0], err))
				}
				defer file.Close()
				in = file
			}

			items, err := ingest.Read(in, f)
			if err != nil {
				return userErr(err)
			}

			result, err := a.svc.Ingest(items, capacity)
			if err != nil {
				return classify(err)
			}
			if a.flagJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Ingested %d work items\n", len(result.Backlog.UserStories))
			printPlan(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVar(&capacity, "capacity", 0, "story points per sprint (default: stored team capacity)")
	cmd.Flags().StringVar(&format, "format", "", "input format, json or yaml (default: from file extension)")
	return cmd
}
