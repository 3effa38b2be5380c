package types

import (
	"errors"
	"time"
)

// DefaultTeamCapacity is the story points per sprint of a new backlog.
const DefaultTeamCapacity = 9

// VelocityWindow is the number of most recent sprint reports averaged into
// the current velocity.
const VelocityWindow = 3

// Backlog is the complete persisted snapshot. It is always saved and loaded
// as a whole.
type Backlog struct {
	UserStories     []WorkItem `json:"user_stories"`
	Sprints         []Sprint   `json:"sprints"`
	TeamCapacity    int        `json:"team_capacity"`
	VelocityHistory []int      `json:"velocity_history"`
	CurrentVelocity *float64   `json:"current_velocity"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewBacklog returns an empty backlog with the default capacity, stamped
// with now.
func NewBacklog(now time.Time) *Backlog {
	b := &Backlog{
		TeamCapacity: DefaultTeamCapacity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.Normalize()
	return b
}

// Normalize replaces nil lists with empty ones throughout the snapshot.
func (b *Backlog) Normalize() {
	if b.UserStories == nil {
		b.UserStories = []WorkItem{}
	}
	for i := range b.UserStories {
		b.UserStories[i].normalize()
	}
	if b.Sprints == nil {
		b.Sprints = []Sprint{}
	}
	for i := range b.Sprints {
		if b.Sprints[i].UserStories == nil {
			b.Sprints[i].UserStories = []string{}
		}
	}
	if b.VelocityHistory == nil {
		b.VelocityHistory = []int{}
	}
}

// Item returns the work item with the given id.
func (b *Backlog) Item(id string) (*WorkItem, bool) {
	for i := range b.UserStories {
		if b.UserStories[i].ID == id {
			return &b.UserStories[i], true
		}
	}
	return nil, false
}

// Sprint returns the sprint with the given number.
func (b *Backlog) Sprint(number int) (*Sprint, bool) {
	for i := range b.Sprints {
		if b.Sprints[i].Number == number {
			return &b.Sprints[i], true
		}
	}
	return nil, false
}

// TotalPoints sums the estimates of every work item.
func (b *Backlog) TotalPoints() int {
	total := 0
	for _, item := range b.UserStories {
		total += item.StoryPoints
	}
	return total
}

// EffectiveCapacity is the per-sprint capacity used when re-planning
// without an explicit override: the truncated current velocity when one is
// known and non-zero, otherwise the team capacity.
func (b *Backlog) EffectiveCapacity() int {
	if b.CurrentVelocity != nil && *b.CurrentVelocity != 0 {
		return int(*b.CurrentVelocity)
	}
	return b.TeamCapacity
}

// RollingVelocity returns the mean of the last VelocityWindow entries of
// history, or nil for an empty history.
func RollingVelocity(history []int) *float64 {
	if len(history) == 0 {
		return nil
	}
	start := len(history) - VelocityWindow
	if start < 0 {
		start = 0
	}
	sum := 0
	for _, v := range history[start:] {
		sum += v
	}
	avg := float64(sum) / float64(len(history)-start)
	return &avg
}

// velocityBelowOne reports whether a full velocity window averages under one
// point, the only case in which the team capacity may be zero.
func (b *Backlog) velocityBelowOne() bool {
	return len(b.VelocityHistory) >= VelocityWindow && b.CurrentVelocity != nil && *b.CurrentVelocity < 1
}

// Validate checks a loaded snapshot. All violations are joined into the
// returned error; each matches ErrValidation.
func (b *Backlog) Validate() error {
	var errs []error

	if b.TeamCapacity < 0 || (b.TeamCapacity == 0 && !b.velocityBelowOne()) {
		errs = append(errs, invalid("", "team_capacity", b.TeamCapacity, "must be positive"))
	}

	seen := make(map[string]bool, len(b.UserStories))
	for _, item := range b.UserStories {
		if err := item.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[item.ID] {
			errs = append(errs, invalid(item.ID, "id", item.ID, "duplicate id"))
		}
		seen[item.ID] = true
	}

	numbers := make(map[int]bool, len(b.Sprints))
	for _, s := range b.Sprints {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if numbers[s.Number] {
			errs = append(errs, invalid("", "sprints.number", s.Number, "duplicate sprint number"))
		}
		numbers[s.Number] = true
	}

	for _, v := range b.VelocityHistory {
		if v < 0 {
			errs = append(errs, invalid("", "velocity_history", v, "must not be negative"))
			break
		}
	}

	want := RollingVelocity(b.VelocityHistory)
	switch {
	case want == nil && b.CurrentVelocity != nil:
		errs = append(errs, invalid("", "current_velocity", *b.CurrentVelocity, "set without velocity history"))
	case want != nil && b.CurrentVelocity == nil:
		errs = append(errs, invalid("", "current_velocity", nil, "missing for non-empty velocity history"))
	case want != nil && *want != *b.CurrentVelocity:
		errs = append(errs, invalid("", "current_velocity", *b.CurrentVelocity, "does not match velocity history"))
	}

	return errors.Join(errs...)
}
