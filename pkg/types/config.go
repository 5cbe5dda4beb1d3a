package types

import "errors"

// Config holds the settings the CLI resolves before building a Registry.
type Config struct {
	ManifestPath string `json:"manifest" yaml:"manifest"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
}

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config validation errors.
var (
	ErrManifestEmpty   = errors.New("manifest path must not be empty")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

// knownLogLevels lists the levels that Validate accepts. An empty level
// means the default.
var knownLogLevels = map[string]bool{
	"":            true,
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.ManifestPath == "" {
		return ErrManifestEmpty
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
