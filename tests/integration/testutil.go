// Package integration drives the built sprintplan binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// sprintplanBin is the path to the built binary.
	sprintplanBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with the compiler output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// cleanEnv returns os.Environ() without SPRINTPLAN_* and XDG_* variables.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "SPRINTPLAN_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// TestEnv is an isolated home with its own XDG directories.
type TestEnv struct {
	t         *testing.T
	Home      string
	ConfigDir string
	DataDir   string

	// Env is appended to the cleaned process environment.
	Env []string
}

// NewTestEnv creates a TestEnv whose XDG directories live under a temp dir.
// Commands run without directory flags resolve to ConfigDir and DataDir.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build sprintplan: %v", buildErr)
	}
	if sprintplanBin == "" {
		t.Fatal("sprintplan binary not built")
	}

	home := t.TempDir()
	xdgConfig := filepath.Join(home, ".config")
	xdgData := filepath.Join(home, ".local", "share")
	return &TestEnv{
		t:         t,
		Home:      home,
		ConfigDir: filepath.Join(xdgConfig, "sprintplan"),
		DataDir:   filepath.Join(xdgData, "sprintplan"),
		Env: []string{
			"HOME=" + home,
			"XDG_CONFIG_HOME=" + xdgConfig,
			"XDG_DATA_HOME=" + xdgData,
		},
	}
}

// CmdResult holds the outcome of one sprintplan invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes sprintplan with args and stdin.
func (e *TestEnv) Run(stdin io.Reader, args ...string) CmdResult {
	e.t.Helper()

	cmd := exec.Command(sprintplanBin, args...)
	cmd.Env = append(cleanEnv(), e.Env...)
	cmd.Dir = e.Home
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			e.t.Fatalf("run sprintplan: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes sprintplan and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(nil, args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("sprintplan %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// WriteConfig writes config.yaml into the XDG config directory.
func (e *TestEnv) WriteConfig(content string) {
	e.t.Helper()
	if err := os.MkdirAll(e.ConfigDir, 0o755); err != nil {
		e.t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.ConfigDir, "config.yaml"), []byte(content), 0o644); err != nil {
		e.t.Fatalf("write config: %v", err)
	}
}

// ParseJSON parses JSON output into T.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return result
}

// Backlog is the subset of the snapshot the tests inspect.
type Backlog struct {
	TeamCapacity    int      `json:"team_capacity"`
	CurrentVelocity *float64 `json:"current_velocity"`
	VelocityHistory []int    `json:"velocity_history"`
	UserStories     []Item   `json:"user_stories"`
	Sprints         []Sprint `json:"sprints"`
}

// Item is a stored work item.
type Item struct {
	ID             string `json:"id"`
	Priority       string `json:"priority"`
	StoryPoints    int    `json:"story_points"`
	SprintAssigned *int   `json:"sprint_assigned"`
}

// Sprint is a stored sprint.
type Sprint struct {
	Number      int      `json:"number"`
	Status      string   `json:"status"`
	UserStories []string `json:"user_stories"`
	TotalPoints int      `json:"total_points"`
}
