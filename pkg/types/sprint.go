package types

import (
	"fmt"
	"strings"
	"time"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

// Sprint states.
const (
	SprintPlanned   SprintStatus = "Planned"
	SprintCompleted SprintStatus = "Completed"
)

// Valid reports whether s is a known sprint state.
func (s SprintStatus) Valid() bool {
	switch s {
	case SprintPlanned, SprintCompleted:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SprintStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

// UnmarshalText accepts the canonical names and the names written by older
// snapshots ("Planificado", "Completado").
func (s *SprintStatus) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "planned", "planificado":
		*s = SprintPlanned
	case "completed", "completado":
		*s = SprintCompleted
	default:
		*s = SprintStatus(text)
	}
	return nil
}

// Sprint is a capacity-bounded allocation bucket.
type Sprint struct {
	Number          int          `json:"number"`
	Name            string       `json:"name"`
	Capacity        int          `json:"capacity"`
	UserStories     []string     `json:"user_stories"`
	TotalPoints     int          `json:"total_points"`
	CompletedPoints int          `json:"completed_points"`
	Status          SprintStatus `json:"status"`
	StartDate       *time.Time   `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
}

// SprintName returns the display name for sprint number n.
func SprintName(n int) string {
	return fmt.Sprintf("Sprint %d", n)
}

// Utilization returns total points as a percentage of capacity. It exceeds
// 100 for a sprint holding a single oversized item.
func (s Sprint) Utilization() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.TotalPoints) / float64(s.Capacity) * 100
}

// Validate checks the invariants of a stored sprint.
func (s Sprint) Validate() error {
	if s.Number < 1 {
		return invalid("", "sprints.number", s.Number, "must be positive")
	}
	if s.Capacity < 1 {
		return invalid("", "sprints.capacity", s.Capacity, "must be positive")
	}
	if !s.Status.Valid() {
		return invalid("", "sprints.status", s.Status, "must be Planned or Completed")
	}
	return nil
}
