package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type initOutput struct {
	ConfigDir     string `json:"config_dir"`
	ConfigCreated bool   `json:"config_created"`
	DataDir       string `json:"data_dir"`
	ExportsDir    string `json:"exports_dir"`
	Backend       string `json:"backend"`
}

func TestDirectoryPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		env         func(home string) []string
		flags       func(home string) []string
		wantData    func(env *TestEnv) string
		wantExports func(env *TestEnv) string
	}{
		{
			name:        "platform defaults",
			wantData:    func(env *TestEnv) string { return env.DataDir },
			wantExports: func(env *TestEnv) string { return filepath.Join(env.DataDir, "exports") },
		},
		{
			name: "environment over defaults",
			env: func(home string) []string {
				return []string{
					"SPRINTPLAN_DATA_DIR=" + filepath.Join(home, "env-data"),
					"SPRINTPLAN_EXPORTS_DIR=" + filepath.Join(home, "env-exports"),
				}
			},
			wantData:    func(env *TestEnv) string { return filepath.Join(env.Home, "env-data") },
			wantExports: func(env *TestEnv) string { return filepath.Join(env.Home, "env-exports") },
		},
		{
			name:   "config file over environment",
			config: "data_dir: cfg-data\n",
			env: func(home string) []string {
				return []string{"SPRINTPLAN_DATA_DIR=" + filepath.Join(home, "env-data")}
			},
			wantData:    func(env *TestEnv) string { return filepath.Join(env.Home, "cfg-data") },
			wantExports: func(env *TestEnv) string { return filepath.Join(env.Home, "cfg-data", "exports") },
		},
		{
			name:   "flag over config file",
			config: "data_dir: cfg-data\n",
			flags: func(home string) []string {
				return []string{"--data-dir", filepath.Join(home, "flag-data")}
			},
			wantData:    func(env *TestEnv) string { return filepath.Join(env.Home, "flag-data") },
			wantExports: func(env *TestEnv) string { return filepath.Join(env.Home, "flag-data", "exports") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewTestEnv(t)
			if tt.config != "" {
				env.WriteConfig(tt.config)
			}
			if tt.env != nil {
				env.Env = append(env.Env, tt.env(env.Home)...)
			}
			args := []string{"--json"}
			if tt.flags != nil {
				args = append(args, tt.flags(env.Home)...)
			}
			out := ParseJSON[initOutput](t, env.MustRun(append(args, "init")...).Stdout)

			assert.Equal(t, env.ConfigDir, out.ConfigDir)
			assert.Equal(t, tt.wantData(env), out.DataDir)
			assert.Equal(t, tt.wantExports(env), out.ExportsDir)
			assert.DirExists(t, out.DataDir)
		})
	}
}

func TestConfigDirFromEnvironment(t *testing.T) {
	env := NewTestEnv(t)
	custom := filepath.Join(env.Home, "elsewhere")
	env.Env = append(env.Env, "SPRINTPLAN_CONFIG_DIR="+custom)

	out := ParseJSON[initOutput](t, env.MustRun("--json", "init").Stdout)
	assert.Equal(t, custom, out.ConfigDir)
	assert.True(t, out.ConfigCreated)
	assert.FileExists(t, filepath.Join(custom, "config.yaml"))
}

func TestBackendSelection(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		env := NewTestEnv(t)
		env.Env = append(env.Env, "SPRINTPLAN_BACKEND=sqlite")
		out := ParseJSON[initOutput](t, env.MustRun("--json", "init").Stdout)
		assert.Equal(t, "sqlite", out.Backend)
		assert.FileExists(t, filepath.Join(env.DataDir, "backlog.db"))
	})

	t.Run("config file", func(t *testing.T) {
		env := NewTestEnv(t)
		env.WriteConfig("backend: sqlite\n")
		env.MustRun("init")
		assert.FileExists(t, filepath.Join(env.DataDir, "backlog.db"))
		assert.NoFileExists(t, filepath.Join(env.DataDir, "backlog.json"))
	})

	t.Run("unknown", func(t *testing.T) {
		env := NewTestEnv(t)
		env.WriteConfig("backend: dolt\n")
		res := env.Run(nil, "show")
		assert.Equal(t, 1, res.ExitCode)
	})
}
