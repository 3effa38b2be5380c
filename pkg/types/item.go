package types

// Estimate bounds in story points.
const (
	MinEstimate = 1
	MaxEstimate = 13
)

// DefaultItemStatus is the status of a work item that has not been started.
const DefaultItemStatus = "Backlog"

// WorkItem is a unit of backlog work. The JSON names follow the snapshot
// format, where work items are stored as "user_stories".
type WorkItem struct {
	ID                 string     `json:"id" yaml:"id"`
	Title              string     `json:"title" yaml:"title"`
	Gherkin            string     `json:"gherkin" yaml:"gherkin"`
	AcceptanceCriteria []string   `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	TestCases          []TestCase `json:"test_cases" yaml:"test_cases"`
	StoryPoints        int        `json:"story_points" yaml:"story_points"`
	Priority           Priority   `json:"priority" yaml:"priority"`
	Dependencies       []string   `json:"dependencies" yaml:"dependencies"`
	Subtasks           []Subtask  `json:"subtasks" yaml:"subtasks"`
	SprintAssigned     *int       `json:"sprint_assigned" yaml:"sprint_assigned"`
	Status             string     `json:"status" yaml:"status"`
	Tags               []string   `json:"tags" yaml:"tags"`
}

// Subtask is a technical breakdown step. The planner carries it untouched.
type Subtask struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    *string  `json:"description" yaml:"description"`
	EstimatedHours *float64 `json:"estimated_hours" yaml:"estimated_hours"`
	Status         string   `json:"status" yaml:"status"`
}

// TestCase is a verification case for a work item. The planner carries it
// untouched.
type TestCase struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	Preconditions  *string  `json:"preconditions" yaml:"preconditions"`
	Steps          []string `json:"steps" yaml:"steps"`
	ExpectedResult string   `json:"expected_result" yaml:"expected_result"`
	TestType       string   `json:"test_type" yaml:"test_type"`
}

// Validate checks the invariants every stored work item must satisfy.
func (w WorkItem) Validate() error {
	if w.ID == "" {
		return invalid("", "id", w.ID, "must not be empty")
	}
	if w.StoryPoints < MinEstimate || w.StoryPoints > MaxEstimate {
		return invalid(w.ID, "story_points", w.StoryPoints, "must be between 1 and 13")
	}
	if !w.Priority.Valid() {
		return invalid(w.ID, "priority", w.Priority, "must be High, Medium or Low")
	}
	if w.SprintAssigned != nil && *w.SprintAssigned < 1 {
		return invalid(w.ID, "sprint_assigned", *w.SprintAssigned, "must be positive")
	}
	return nil
}

// DependsOn reports whether id is among the item's dependencies.
func (w WorkItem) DependsOn(id string) bool {
	for _, dep := range w.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// normalize replaces nil lists with empty ones so that a snapshot always
// serializes lists as [] and round-trips field for field.
func (w *WorkItem) normalize() {
	if w.AcceptanceCriteria == nil {
		w.AcceptanceCriteria = []string{}
	}
	if w.TestCases == nil {
		w.TestCases = []TestCase{}
	}
	for i := range w.TestCases {
		if w.TestCases[i].Steps == nil {
			w.TestCases[i].Steps = []string{}
		}
	}
	if w.Dependencies == nil {
		w.Dependencies = []string{}
	}
	if w.Subtasks == nil {
		w.Subtasks = []Subtask{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
}
