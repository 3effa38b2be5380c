package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

// backends opens one store of each kind in its own temp dir.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := OpenSQLite(t.TempDir(), 9)
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		types.BackendJSON:   NewFileStore(t.TempDir(), 9),
		types.BackendSQLite: sqliteStore,
	}
}

func sampleBacklog() *types.Backlog {
	created := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	hours := 4.5

	b := types.NewBacklog(created)
	b.TeamCapacity = 5
	b.UserStories = []types.WorkItem{
		{
			ID:                 "HU1",
			Title:              "Sign in",
			Gherkin:            "Given a user\nWhen they sign in\nThen they see the dashboard",
			AcceptanceCriteria: []string{"valid credentials accepted"},
			TestCases: []types.TestCase{{
				ID:             "HU1-TC1",
				Title:          "happy path",
				Preconditions:  strPtr("user exists"),
				Steps:          []string{"open form", "submit"},
				ExpectedResult: "dashboard shown",
				TestType:       "functional",
			}},
			StoryPoints:    5,
			Priority:       types.PriorityHigh,
			Dependencies:   []string{},
			Subtasks:       []types.Subtask{{ID: "HU1-ST1", Title: "form", EstimatedHours: &hours, Status: "Pending"}},
			SprintAssigned: intPtr(1),
			Status:         types.DefaultItemStatus,
			Tags:           []string{"auth"},
		},
		{
			ID:          "HU2",
			Title:       "Reports",
			StoryPoints: 8,
			Priority:    types.PriorityLow,
			Status:      types.DefaultItemStatus,
		},
	}
	b.Sprints = []types.Sprint{{
		Number:          1,
		Name:            types.SprintName(1),
		Capacity:        9,
		UserStories:     []string{"HU1"},
		TotalPoints:     5,
		CompletedPoints: 5,
		Status:          types.SprintCompleted,
		StartDate:       &start,
	}}
	b.VelocityHistory = []int{5, 8, 6}
	b.CurrentVelocity = floatPtr(19.0 / 3)
	return b
}

func TestStoreLoadFresh(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, 9, b.TeamCapacity)
			assert.NotNil(t, b.UserStories)
			assert.Empty(t, b.UserStories)
			assert.Empty(t, b.Sprints)
			assert.Empty(t, b.VelocityHistory)
			assert.Nil(t, b.CurrentVelocity)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleBacklog()
			require.NoError(t, s.Save(want))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStoreRoundTripEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := types.NewBacklog(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, s.Save(want))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.NotNil(t, got.Sprints)
			assert.Nil(t, got.CurrentVelocity)
		})
	}
}

func TestStoreSaveStampsUpdatedAt(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := sampleBacklog()
			before := b.UpdatedAt
			require.NoError(t, s.Save(b))
			assert.True(t, b.UpdatedAt.After(before))
			assert.Equal(t, before, b.CreatedAt)
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(sampleBacklog()))

			next := sampleBacklog()
			next.UserStories = next.UserStories[1:]
			next.Sprints = []types.Sprint{}
			require.NoError(t, s.Save(next))

			got, err := s.Load()
			require.NoError(t, err)
			require.Len(t, got.UserStories, 1)
			assert.Equal(t, "HU2", got.UserStories[0].ID)
			assert.Empty(t, got.Sprints)
		})
	}
}

func TestStoreSaveRejectsInvalid(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(sampleBacklog()))

			bad := sampleBacklog()
			bad.UserStories[0].StoryPoints = 21
			err := s.Save(bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, 5, got.UserStories[0].StoryPoints)
		})
	}
}

func TestStoreClear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(sampleBacklog()))
			require.NoError(t, s.Clear())
			require.NoError(t, s.Clear())

			got, err := s.Load()
			require.NoError(t, err)
			assert.Empty(t, got.UserStories)
			assert.Equal(t, 9, got.TeamCapacity)
		})
	}
}

func TestFileStoreCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{oops"},
		{name: "estimate out of range", content: `{"user_stories":[{"id":"HU1","story_points":40,"priority":"High"}]}`},
		{name: "zero capacity", content: `{"team_capacity":0}`},
		{name: "velocity mismatch", content: `{"velocity_history":[5],"current_velocity":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, SnapshotFileName), []byte(tt.content), 0o644))

			_, err := NewFileStore(dir, 9).Load()
			assert.ErrorIs(t, err, types.ErrCorruptSnapshot)
		})
	}
}

func TestFileStoreLegacySnapshot(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "user_stories": [
    {"id": "HU1", "title": "Login", "story_points": 3, "priority": "Alta",
     "sprint_assigned": 1, "status": "Backlog"},
    {"id": "HU2", "title": "Search", "story_points": 5, "priority": "Baja"}
  ],
  "sprints": [
    {"number": 1, "name": "Sprint 1", "capacity": 9, "user_stories": ["HU1"],
     "total_points": 3, "completed_points": 0, "status": "Planificado",
     "start_date": "2025-11-10T09:00:00", "end_date": null}
  ],
  "velocity_history": [],
  "current_velocity": null,
  "created_at": "2025-11-03T10:00:00.123456",
  "updated_at": "2025-11-03T10:05:30.5"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SnapshotFileName), []byte(legacy), 0o644))

	b, err := NewFileStore(dir, 9).Load()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTeamCapacity, b.TeamCapacity)
	assert.Equal(t, types.PriorityHigh, b.UserStories[0].Priority)
	assert.Equal(t, types.PriorityLow, b.UserStories[1].Priority)
	assert.Equal(t, types.SprintPlanned, b.Sprints[0].Status)
	assert.NotNil(t, b.UserStories[1].Tags)

	created := time.Date(2025, 11, 3, 10, 0, 0, 123456000, time.Local)
	assert.True(t, created.Equal(b.CreatedAt), "created_at %v", b.CreatedAt)
	assert.True(t, time.Date(2025, 11, 3, 10, 5, 30, 500000000, time.Local).Equal(b.UpdatedAt))
	require.NotNil(t, b.Sprints[0].StartDate)
	assert.True(t, time.Date(2025, 11, 10, 9, 0, 0, 0, time.Local).Equal(*b.Sprints[0].StartDate))
	assert.Nil(t, b.Sprints[0].EndDate)

	require.NoError(t, NewFileStore(dir, 9).Save(b), "a legacy snapshot saves back")
	data, err := os.ReadFile(filepath.Join(dir, SnapshotFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priority": "High"`)
}

func TestFileStoreWritesIndentedJSON(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, 9)
	require.NoError(t, s.Save(sampleBacklog()))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"user_stories\": [")
	assert.Contains(t, string(data), `"priority": "High"`)
}

func TestSQLiteStoreRevision(t *testing.T) {
	s, err := OpenSQLite(t.TempDir(), 9)
	require.NoError(t, err)
	defer s.Close()

	rev, err := s.Revision()
	require.NoError(t, err)
	assert.Empty(t, rev)

	require.NoError(t, s.Save(sampleBacklog()))
	first, err := s.Revision()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	require.NoError(t, s.Save(sampleBacklog()))
	second, err := s.Revision()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLite(dir, 9)
	require.NoError(t, err)
	want := sampleBacklog()
	require.NoError(t, s.Save(want))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(dir, 9)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStoreClosed(t *testing.T) {
	s, err := OpenSQLite(t.TempDir(), 9)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Load()
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Save(sampleBacklog()), types.ErrStoreClosed)
	assert.ErrorIs(t, s.Clear(), types.ErrStoreClosed)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr error
	}{
		{name: "json", backend: types.BackendJSON},
		{name: "sqlite", backend: types.BackendSQLite},
		{name: "unknown", backend: "postgres", wantErr: types.ErrBackendUnknown},
		{name: "empty", backend: "", wantErr: types.ErrBackendEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "data")
			s, err := Open(types.Config{Backend: tt.backend, DataDir: dir, DefaultCapacity: 12})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			assert.DirExists(t, dir)
			b, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, 12, b.TeamCapacity)
		})
	}
}
