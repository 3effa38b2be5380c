package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

var csvHeader = []string{
	"ID", "Title", "Narrative", "Acceptance Criteria", "Story Points", "Priority",
	"Sprint Assigned", "Dependencies", "Subtasks", "Test Cases", "Tags", "Status",
}

// WriteCSV writes one row per work item after a header row.
func WriteCSV(w io.Writer, b *types.Backlog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, item := range b.UserStories {
		subtasks := make([]string, 0, len(item.Subtasks))
		for _, st := range item.Subtasks {
			subtasks = append(subtasks, st.Title)
		}
		cases := make([]string, 0, len(item.TestCases))
		for _, tc := range item.TestCases {
			cases = append(cases, fmt.Sprintf("%s: %s", tc.ID, tc.Title))
		}

		row := []string{
			item.ID,
			item.Title,
			item.Gherkin,
			strings.Join(item.AcceptanceCriteria, "; "),
			strconv.Itoa(item.StoryPoints),
			string(item.Priority),
			sprintLabel(item.SprintAssigned),
			strings.Join(item.Dependencies, ", "),
			strings.Join(subtasks, ", "),
			strings.Join(cases, "; "),
			strings.Join(item.Tags, ", "),
			item.Status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
