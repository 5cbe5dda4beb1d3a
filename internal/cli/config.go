package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/classattr/internal/paths"
	"github.com/mesh-intelligence/classattr/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyManifest = "manifest"
	cfgKeyLogLevel = "log_level"

	defaultLogLevel = types.LogLevelWarn
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Manifest string `yaml:"manifest,omitempty"`
	LogLevel string `yaml:"log_level"`
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; the defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveConfig merges flags, config.yaml, and the environment into a
// validated types.Config.
func resolveConfig(f *rootFlags) (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, "", err
	}

	manifestPath, err := paths.ResolveManifest(f.manifest, v.GetString(cfgKeyManifest), configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve manifest: %w", err)
	}

	cfg := types.Config{
		ManifestPath: manifestPath,
		LogLevel:     v.GetString(cfgKeyLogLevel),
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", err
	}
	return cfg, configDir, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := configFile{LogLevel: defaultLogLevel}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func configPath(configDir string) string {
	return filepath.Join(configDir, paths.ConfigFileName)
}
