package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 utc", in: "2026-03-02T08:30:00Z", want: time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
		{name: "rfc3339 offset", in: "2026-03-02T08:30:00+02:00", want: time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)},
		{name: "zone-less micros", in: "2025-11-03T10:00:00.123456", want: time.Date(2025, 11, 3, 10, 0, 0, 123456000, time.Local)},
		{name: "zone-less seconds", in: "2025-11-03T10:00:00", want: time.Date(2025, 11, 3, 10, 0, 0, 0, time.Local)},
		{name: "space separator", in: "2025-11-03 10:00:00.5", want: time.Date(2025, 11, 3, 10, 0, 0, 500000000, time.Local)},
		{name: "date only", in: "2025-11-03", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestBacklogUnmarshalZoneLessTimestamps(t *testing.T) {
	doc := `{
  "user_stories": [],
  "sprints": [{"number": 1, "name": "Sprint 1", "capacity": 9, "user_stories": [],
               "status": "Completado", "start_date": "2025-11-10T09:00:00.000001", "end_date": null}],
  "team_capacity": 7,
  "velocity_history": [],
  "current_velocity": null,
  "created_at": "2025-11-03T10:00:00.123456",
  "updated_at": "2025-11-04T11:00:00Z"
}`
	var b Backlog
	require.NoError(t, json.Unmarshal([]byte(doc), &b))

	assert.Equal(t, 7, b.TeamCapacity)
	assert.True(t, time.Date(2025, 11, 3, 10, 0, 0, 123456000, time.Local).Equal(b.CreatedAt))
	assert.True(t, time.Date(2025, 11, 4, 11, 0, 0, 0, time.UTC).Equal(b.UpdatedAt))
	require.Len(t, b.Sprints, 1)
	assert.Equal(t, SprintCompleted, b.Sprints[0].Status)
	require.NotNil(t, b.Sprints[0].StartDate)
	assert.True(t, time.Date(2025, 11, 10, 9, 0, 0, 1000, time.Local).Equal(*b.Sprints[0].StartDate))
	assert.Nil(t, b.Sprints[0].EndDate)
}

func TestBacklogUnmarshalKeepsMissingFields(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := Backlog{TeamCapacity: DefaultTeamCapacity, CreatedAt: created}
	require.NoError(t, json.Unmarshal([]byte(`{"user_stories": []}`), &b))
	assert.Equal(t, DefaultTeamCapacity, b.TeamCapacity)
	assert.Equal(t, created, b.CreatedAt)
}

func TestBacklogUnmarshalRejectsBadTimestamp(t *testing.T) {
	var b Backlog
	assert.Error(t, json.Unmarshal([]byte(`{"created_at": "03/11/2025"}`), &b))
	assert.Error(t, json.Unmarshal([]byte(`{"sprints": [{"number": 1, "start_date": 12}]}`), &b))
}
