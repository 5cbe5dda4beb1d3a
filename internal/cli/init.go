package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/classattr/internal/manifest"
)

// sampleManifest is written by init when no manifest exists yet.
var sampleManifest = manifest.Manifest{
	Types: []manifest.Type{
		{Name: "Base", Attributes: []string{"enabled"}, Defaults: map[string]any{"enabled": true}},
		{Name: "Derived", Parent: "Base", Defaults: map[string]any{"enabled": false}},
		{Name: "Sibling", Parent: "Base"},
	},
	Instances: []manifest.Instance{
		{Label: "d", Type: "Derived", Promote: true, Overrides: map[string]any{"enabled": true}},
		{Label: "e", Type: "Derived"},
	},
}

func newInitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration directory and a sample manifest",
		Long:  "Create the configuration directory, a default config.yaml, and a sample manifest.\nExisting files are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, f)
		},
	}
}

func runInit(cmd *cobra.Command, f *rootFlags) error {
	cfg, configDir, err := resolveConfig(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := writeConfigIfMissing(configPath(configDir)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := writeManifestIfMissing(cfg.ManifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config: %s\nmanifest: %s\n", configPath(configDir), cfg.ManifestPath)
	return nil
}

func writeManifestIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := sampleManifest.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
