package types

// VelocityReport reports the points a team completed in one sprint.
type VelocityReport struct {
	SprintNumber    int    `json:"sprint_number"`
	CompletedPoints int    `json:"completed_points"`
	TotalPoints     int    `json:"total_points"`
	Feedback        string `json:"feedback,omitempty"`
}

// Validate rejects reports that cannot be recorded.
func (r VelocityReport) Validate() error {
	if r.CompletedPoints < 0 {
		return invalid("", "completed_points", r.CompletedPoints, "must not be negative")
	}
	if r.TotalPoints < 0 {
		return invalid("", "total_points", r.TotalPoints, "must not be negative")
	}
	return nil
}
