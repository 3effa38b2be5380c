package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Summary table truncation limits.
const (
	narrativePreview = 50
	listPreview      = 3
)

// WriteMarkdown writes the narrative report: a summary table, per-item
// detail, the sprint plan, and the velocity history.
func WriteMarkdown(w io.Writer, b *types.Backlog, generated time.Time) error {
	var buf bytes.Buffer

	buf.WriteString("# Product Backlog\n\n")
	fmt.Fprintf(&buf, "**Generated:** %s\n\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "**Team Capacity:** %d story points/sprint\n\n", b.TeamCapacity)
	if b.CurrentVelocity != nil {
		fmt.Fprintf(&buf, "**Current Velocity:** %.1f story points/sprint\n\n", *b.CurrentVelocity)
	}

	writeSummaryTable(&buf, b.UserStories)
	writeItemDetail(&buf, b.UserStories)
	writeSprintPlan(&buf, b)
	writeVelocityHistory(&buf, b.VelocityHistory)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeSummaryTable(buf *bytes.Buffer, items []types.WorkItem) {
	buf.WriteString("## Work Items\n\n")
	buf.WriteString("| ID | Title | Narrative | Acceptance Criteria | Story Points | Priority | Sprint | Subtasks |\n")
	buf.WriteString("|---|---|---|---|---|---|---|---|\n")

	for _, item := range items {
		criteria := strings.Join(head(item.AcceptanceCriteria, listPreview), "; ")
		if len(item.AcceptanceCriteria) > listPreview {
			criteria += "..."
		}

		titles := make([]string, 0, len(item.Subtasks))
		for _, st := range item.Subtasks {
			titles = append(titles, st.Title)
		}
		subtasks := strings.Join(head(titles, listPreview), ", ")
		if extra := len(titles) - listPreview; extra > 0 {
			subtasks += fmt.Sprintf(" (+%d more)", extra)
		}

		fmt.Fprintf(buf, "| %s | %s | %s | %s | %d | %s | %s | %s |\n",
			cell(item.ID), cell(item.Title), cell(preview(item.Gherkin, narrativePreview)),
			cell(criteria), item.StoryPoints, item.Priority, sprintLabel(item.SprintAssigned), cell(subtasks))
	}
}

func writeItemDetail(buf *bytes.Buffer, items []types.WorkItem) {
	buf.WriteString("\n## Work Item Detail\n\n")
	for _, item := range items {
		fmt.Fprintf(buf, "### %s: %s\n\n", item.ID, item.Title)
		fmt.Fprintf(buf, "**Narrative:** %s\n\n", item.Gherkin)
		fmt.Fprintf(buf, "**Story Points:** %d | **Priority:** %s\n\n", item.StoryPoints, item.Priority)

		if len(item.Dependencies) > 0 {
			fmt.Fprintf(buf, "**Dependencies:** %s\n\n", strings.Join(item.Dependencies, ", "))
		}

		buf.WriteString("**Acceptance Criteria:**\n")
		for i, c := range item.AcceptanceCriteria {
			fmt.Fprintf(buf, "%d. %s\n", i+1, c)
		}
		buf.WriteString("\n")

		if len(item.TestCases) > 0 {
			buf.WriteString("**Test Cases:**\n\n")
			for _, tc := range item.TestCases {
				fmt.Fprintf(buf, "#### %s: %s\n\n", tc.ID, tc.Title)
				fmt.Fprintf(buf, "**Description:** %s\n\n", tc.Description)
				if tc.Preconditions != nil && *tc.Preconditions != "" {
					fmt.Fprintf(buf, "**Preconditions:** %s\n\n", *tc.Preconditions)
				}
				buf.WriteString("**Steps:**\n")
				for i, step := range tc.Steps {
					fmt.Fprintf(buf, "%d. %s\n", i+1, step)
				}
				fmt.Fprintf(buf, "\n**Expected Result:** %s\n\n", tc.ExpectedResult)
				fmt.Fprintf(buf, "**Type:** `%s`\n\n", tc.TestType)
				buf.WriteString("---\n\n")
			}
		}

		buf.WriteString("**Subtasks:**\n")
		for _, st := range item.Subtasks {
			if st.EstimatedHours != nil && *st.EstimatedHours > 0 {
				fmt.Fprintf(buf, "- %s (%gh)\n", st.Title, *st.EstimatedHours)
			} else {
				fmt.Fprintf(buf, "- %s\n", st.Title)
			}
		}
		buf.WriteString("\n")

		if len(item.Tags) > 0 {
			fmt.Fprintf(buf, "**Tags:** %s\n\n", strings.Join(item.Tags, ", "))
		}
		buf.WriteString("---\n\n")
	}
}

func writeSprintPlan(buf *bytes.Buffer, b *types.Backlog) {
	if len(b.Sprints) == 0 {
		return
	}
	buf.WriteString("## Sprint Plan\n\n")
	for _, s := range b.Sprints {
		fmt.Fprintf(buf, "### %s\n\n", s.Name)
		fmt.Fprintf(buf, "**Capacity:** %d SP | **Assigned:** %d SP | **Utilization:** %.0f%%\n\n",
			s.Capacity, s.TotalPoints, s.Utilization())
		if s.CompletedPoints > 0 {
			fmt.Fprintf(buf, "**Completed:** %d SP | **Status:** %s\n\n", s.CompletedPoints, s.Status)
		}
		buf.WriteString("**Assigned Items:**\n")
		for _, id := range s.UserStories {
			if item, ok := b.Item(id); ok {
				fmt.Fprintf(buf, "- %s: %s (%d SP)\n", item.ID, item.Title, item.StoryPoints)
			}
		}
		buf.WriteString("\n")
	}
}

func writeVelocityHistory(buf *bytes.Buffer, history []int) {
	if len(history) == 0 {
		return
	}
	buf.WriteString("## Velocity History\n\n")
	buf.WriteString("| Report | Story Points Completed |\n")
	buf.WriteString("|---|---|\n")
	for i, v := range history {
		fmt.Fprintf(buf, "| %d | %d |\n", i+1, v)
	}
	buf.WriteString("\n")
}

func sprintLabel(n *int) string {
	if n == nil {
		return "Backlog"
	}
	return types.SprintName(*n)
}

// preview cuts s to n runes and marks the cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// cell makes s safe inside a Markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
