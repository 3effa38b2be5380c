package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sprintplan/internal/atomicfile"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "SPRINTPLAN"

	cfgKeyBackend         = "backend"
	cfgKeyDataDir         = "data_dir"
	cfgKeyExportsDir      = "exports_dir"
	cfgKeyDefaultCapacity = "default_capacity"
	cfgKeyLogLevel        = "log_level"
	cfgKeyLogFormat       = "log_format"
)

// envKeys are the settings read from SPRINTPLAN_* variables. Directory
// settings are left to internal/paths, which ranks config.yaml above the
// environment.
var envKeys = []string{cfgKeyBackend, cfgKeyDefaultCapacity, cfgKeyLogLevel, cfgKeyLogFormat}

// configFile is the document written to config.yaml.
type configFile struct {
	Backend         string `yaml:"backend"`
	DataDir         string `yaml:"data_dir,omitempty"`
	ExportsDir      string `yaml:"exports_dir,omitempty"`
	DefaultCapacity int    `yaml:"default_capacity"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
}

const configHeader = `# sprintplan configuration
#
# backend: json (backlog.json) or sqlite (backlog.db)
# default_capacity: story points per sprint for a new backlog
# data_dir, exports_dir: optional; --data-dir and SPRINTPLAN_DATA_DIR also apply
# log_level: debug, info, warn, error; log_format: console or json

`

func defaultConfig() types.Config {
	return types.Config{
		Backend:         types.BackendJSON,
		DefaultCapacity: types.DefaultTeamCapacity,
		LogLevel:        "warn",
		LogFormat:       "console",
	}
}

// loadConfig reads config.yaml from configDir with viper. A missing file
// yields the defaults.
func loadConfig(configDir string) (types.Config, error) {
	d := defaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyBackend, d.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyExportsDir, "")
	v.SetDefault(cfgKeyDefaultCapacity, d.DefaultCapacity)
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyLogFormat, d.LogFormat)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", filepath.Join(configDir, configFileExt), err)
	}
	return cfg, nil
}

// writeDefaultConfig creates configDir and a default config.yaml in it. An
// existing file is left alone; created reports whether one was written.
func writeDefaultConfig(configDir string) (created bool, err error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	d := defaultConfig()
	body, err := yaml.Marshal(&configFile{
		Backend:         d.Backend,
		DefaultCapacity: d.DefaultCapacity,
		LogLevel:        d.LogLevel,
		LogFormat:       d.LogFormat,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.Write(body)
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
