package types

import "errors"

// Config holds store selection and engine parameters.
type Config struct {
	Backend         string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir         string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	ExportsDir      string `json:"exports_dir" yaml:"exports_dir" mapstructure:"exports_dir"`
	DefaultCapacity int    `json:"default_capacity" yaml:"default_capacity" mapstructure:"default_capacity"`
	LogLevel        string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat       string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
}

// Supported store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrCapacityInvalid  = errors.New("default capacity must be positive")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownBackends = map[string]bool{
	BackendJSON:   true,
	BackendSQLite: true,
}

var knownLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var knownLogFormats = map[string]bool{
	"":        true,
	"json":    true,
	"console": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DefaultCapacity < 1 {
		return ErrCapacityInvalid
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}
