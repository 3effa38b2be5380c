// Package paths resolves where sprintplan keeps its configuration, its
// backlog snapshot, and its export files.
//
// Every location follows the same precedence: command-line flag, then the
// value from config.yaml (data and exports only), then the environment
// variable, then the platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "sprintplan"

// ExportsDirName is the exports subdirectory of the data directory.
const ExportsDirName = "exports"

// Environment variables overriding each location.
const (
	EnvConfigDir  = "SPRINTPLAN_CONFIG_DIR"
	EnvDataDir    = "SPRINTPLAN_DATA_DIR"
	EnvExportsDir = "SPRINTPLAN_EXPORTS_DIR"
)

// platformDir is swapped in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/sprintplan (fallback ~/.config/sprintplan)
// Others:  os.UserConfigDir()/sprintplan
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/sprintplan (fallback ~/.local/share/sprintplan)
// Others:  os.UserConfigDir()/sprintplan
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(envVar, homeRel string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(envVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// SPRINTPLAN_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(EnvConfigDir, DefaultConfigDir, flag)
}

// ResolveDataDir returns the data directory: flag, then the config.yaml
// value, then SPRINTPLAN_DATA_DIR, then DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(EnvDataDir, DefaultDataDir, flag, configValue)
}

// ResolveExportsDir returns the exports directory: the config.yaml value,
// then SPRINTPLAN_EXPORTS_DIR, then dataDir/exports.
func ResolveExportsDir(configValue, dataDir string) (string, error) {
	return resolve(EnvExportsDir, func() (string, error) {
		return filepath.Join(dataDir, ExportsDirName), nil
	}, configValue)
}

// resolve returns the first non-empty explicit value, then the env var,
// then the fallback. Explicit values and the env var are made absolute.
func resolve(envVar string, fallback func() (string, error), explicit ...string) (string, error) {
	for _, v := range explicit {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	if env := os.Getenv(envVar); env != "" {
		return filepath.Abs(env)
	}
	return fallback()
}
