// Package paths resolves the configuration directory and the manifest
// location.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default names inside the configuration directory.
const (
	AppDirName          = "classattr"
	ConfigFileName      = "config.yaml"
	DefaultManifestName = "manifest.yaml"
)

// Environment variable names for overrides.
const (
	EnvConfigDir = "CLASSATTR_CONFIG_DIR"
	EnvManifest  = "CLASSATTR_MANIFEST"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/classattr (fallback ~/.config/classattr)
// macOS:   ~/Library/Application Support/classattr
// Windows: %APPDATA%/classattr
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppDirName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > CLASSATTR_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveManifest returns the manifest path following the precedence chain:
// flag > configValue > CLASSATTR_MANIFEST env > <configDir>/manifest.yaml.
//
// Relative flag and env values are taken relative to the working directory;
// a relative configValue is taken relative to configDir, where config.yaml
// lives.
func ResolveManifest(flag, configValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		if filepath.IsAbs(configValue) {
			return configValue, nil
		}
		return filepath.Join(configDir, configValue), nil
	}
	if env := os.Getenv(EnvManifest); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(configDir, DefaultManifestName), nil
}
