// Package registry provides the public API for building a type hierarchy.
// This package exposes factory functions while keeping the implementation
// internal.
package registry

import (
	"log/slog"

	"github.com/mesh-intelligence/classattr/internal/manifest"
	"github.com/mesh-intelligence/classattr/internal/registry"
	"github.com/mesh-intelligence/classattr/pkg/types"
)

// New creates an empty registry. A nil logger discards log output.
//
// Example:
//
//	reg := registry.New(nil)
//	base, _ := reg.DefineType("Base", "")
//	base.Declare("enabled")
//	derived, _ := reg.DefineType("Derived", "Base")
//	inst, _ := reg.NewInstance("Derived", "d")
func New(logger *slog.Logger) types.Registry {
	return registry.New(logger)
}

// LoadFile creates a registry populated from the manifest at path.
func LoadFile(path string, logger *slog.Logger) (types.Registry, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	r := registry.New(logger)
	if err := r.Load(m); err != nil {
		return nil, err
	}
	return r, nil
}
