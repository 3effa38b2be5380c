package planner

import "github.com/mesh-intelligence/sprintplan/pkg/types"

// ApplyVelocity records a completed-sprint report on b. The matching sprint,
// if any, is marked completed with the reported points. The report is
// appended to the velocity history either way, the current velocity is
// recomputed over the last types.VelocityWindow entries, and once the
// history holds a full window the team capacity follows the truncated
// velocity. It reports whether the sprint was found.
func ApplyVelocity(b *types.Backlog, r types.VelocityReport) bool {
	sprint, found := b.Sprint(r.SprintNumber)
	if found {
		sprint.CompletedPoints = r.CompletedPoints
		sprint.Status = types.SprintCompleted
	}

	b.VelocityHistory = append(b.VelocityHistory, r.CompletedPoints)
	b.CurrentVelocity = types.RollingVelocity(b.VelocityHistory)

	if len(b.VelocityHistory) >= types.VelocityWindow {
		// Truncates toward zero. A velocity below 1 leaves a zero capacity
		// that planning rejects until a positive capacity is supplied.
		b.TeamCapacity = int(*b.CurrentVelocity)
	}
	return found
}
