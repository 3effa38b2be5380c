package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backlogYAML = `user_stories:
  - id: HU1
    title: Sign in
    story_points: 5
    priority: Medium
  - id: HU2
    title: Password reset
    story_points: 3
    priority: High
    dependencies: [HU1]
  - id: HU3
    title: Audit log
    story_points: 8
    priority: High
  - id: HU4
    title: Dark mode
    story_points: 2
    priority: Low
`

func TestLifecycle(t *testing.T) {
	env := NewTestEnv(t)

	res := env.MustRun("init")
	assert.Contains(t, res.Stdout, "(created)")
	assert.FileExists(t, filepath.Join(env.ConfigDir, "config.yaml"))
	assert.DirExists(t, env.DataDir)

	res = env.Run(strings.NewReader(backlogYAML), "ingest", "-", "--format", "yaml", "--capacity", "8")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "Ingested 4 work items")

	b := ParseJSON[Backlog](t, env.MustRun("--json", "show").Stdout)
	assert.Equal(t, 8, b.TeamCapacity)
	ids := make([]string, len(b.UserStories))
	for i, item := range b.UserStories {
		ids[i] = item.ID
	}
	// High items first; HU1 outranks HU4 on priority alone.
	assert.Equal(t, []string{"HU2", "HU3", "HU1", "HU4"}, ids)
	require.Len(t, b.Sprints, 3)
	assert.Equal(t, []string{"HU2"}, b.Sprints[0].UserStories)
	assert.Equal(t, []string{"HU3"}, b.Sprints[1].UserStories)
	assert.Equal(t, []string{"HU1", "HU4"}, b.Sprints[2].UserStories)

	res = env.MustRun("plan", "--sprints", "2")
	assert.Contains(t, res.Stdout, "Unassigned (sprint limit reached): HU1, HU4")

	env.MustRun("velocity", "--sprint", "1", "--completed", "6")
	env.MustRun("velocity", "--sprint", "2", "--completed", "9")
	env.MustRun("velocity", "--sprint", "3", "--completed", "9", "--feedback", "smooth")

	b = ParseJSON[Backlog](t, env.MustRun("--json", "show").Stdout)
	require.NotNil(t, b.CurrentVelocity)
	assert.InDelta(t, 8.0, *b.CurrentVelocity, 1e-9)
	assert.Equal(t, 8, b.TeamCapacity)
	assert.Equal(t, []int{6, 9, 9}, b.VelocityHistory)

	res = env.MustRun("export", "json")
	path := strings.TrimSpace(res.Stdout)
	assert.Equal(t, filepath.Join(env.DataDir, "exports"), filepath.Dir(path))
	exported := ParseJSON[Backlog](t, readFile(t, path))
	assert.Len(t, exported.UserStories, 4)

	env.MustRun("clear")
	b = ParseJSON[Backlog](t, env.MustRun("--json", "show").Stdout)
	assert.Empty(t, b.UserStories)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(env *TestEnv)
		stdin string
		args  []string
		want  int
	}{
		{name: "unknown flag", args: []string{"show", "--bogus"}, want: 1},
		{name: "missing argument", args: []string{"ingest"}, want: 1},
		{name: "plan with no items", args: []string{"plan"}, want: 1},
		{
			name:  "estimate off the scale",
			stdin: `[{"id": "A", "title": "x", "story_points": 7, "priority": "High"}]`,
			args:  []string{"ingest", "-", "--format", "json"},
			want:  1,
		},
		{
			name:  "unknown priority",
			stdin: `[{"id": "A", "title": "x", "story_points": 3, "priority": "Urgent"}]`,
			args:  []string{"ingest", "-", "--format", "json"},
			want:  1,
		},
		{name: "negative capacity", args: []string{"plan", "--capacity", "-1"}, want: 1},
		{name: "unknown export format", args: []string{"export", "pdf"}, want: 1},
		{
			name: "corrupt snapshot",
			setup: func(env *TestEnv) {
				require.NoError(t, os.MkdirAll(env.DataDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(env.DataDir, "backlog.json"), []byte("["), 0o644))
			},
			args: []string{"show"},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewTestEnv(t)
			if tt.setup != nil {
				tt.setup(env)
			}
			res := env.Run(strings.NewReader(tt.stdin), tt.args...)
			assert.Equal(t, tt.want, res.ExitCode, "stdout: %s\nstderr: %s", res.Stdout, res.Stderr)
			assert.Contains(t, res.Stderr, "Error:")
		})
	}
}

func TestVersionOutput(t *testing.T) {
	env := NewTestEnv(t)
	res := env.MustRun("version")
	assert.True(t, strings.HasPrefix(res.Stdout, "sprintplan v"), res.Stdout)
	assert.NoDirExists(t, env.ConfigDir, "version must not touch the filesystem")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
