// Package manifest parses the YAML documents that describe a type hierarchy,
// its attribute defaults, and the instances to create from it.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every decoding and validation failure, so callers can
// tell a bad document from a failure to read it.
var ErrInvalid = errors.New("invalid manifest")

// Manifest validation errors.
var (
	ErrMissingName        = errors.New("missing name")
	ErrDuplicateType      = errors.New("duplicate type name")
	ErrDuplicateLabel     = errors.New("duplicate instance label")
	ErrMissingType        = errors.New("instance has no type")
	ErrOverrideUnpromoted = errors.New("overrides require promote: true")
)

// Manifest is the top-level document.
type Manifest struct {
	Types     []Type     `yaml:"types"`
	Instances []Instance `yaml:"instances"`
}

// Type describes one node of the hierarchy.
type Type struct {
	Name       string         `yaml:"name"`
	Parent     string         `yaml:"parent,omitempty"`
	Attributes []string       `yaml:"attributes,omitempty"`
	Defaults   map[string]any `yaml:"defaults,omitempty"`
}

// Instance describes one instance of a type. Attributes are declared on the
// instance's override layer and therefore require Promote.
type Instance struct {
	Label      string         `yaml:"label"`
	Type       string         `yaml:"type"`
	Promote    bool           `yaml:"promote,omitempty"`
	Attributes []string       `yaml:"attributes,omitempty"`
	Overrides  map[string]any `yaml:"overrides,omitempty"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest and validates it. Unknown fields are rejected.
// An empty document yields an empty manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decoding: %w", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names and labels. It does not check that parents exist or
// that the hierarchy is acyclic; building the registry does that.
// Errors wrap both ErrInvalid and the specific sentinel.
func (m *Manifest) Validate() error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (m *Manifest) validate() error {
	types := make(map[string]bool, len(m.Types))
	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("types[%d]: %w", i, ErrMissingName)
		}
		if types[t.Name] {
			return fmt.Errorf("types[%d] %q: %w", i, t.Name, ErrDuplicateType)
		}
		types[t.Name] = true
	}

	labels := make(map[string]bool, len(m.Instances))
	for i, inst := range m.Instances {
		if inst.Type == "" {
			return fmt.Errorf("instances[%d]: %w", i, ErrMissingType)
		}
		if inst.Label != "" {
			if labels[inst.Label] {
				return fmt.Errorf("instances[%d] %q: %w", i, inst.Label, ErrDuplicateLabel)
			}
			labels[inst.Label] = true
		}
		if !inst.Promote && (len(inst.Overrides) > 0 || len(inst.Attributes) > 0) {
			return fmt.Errorf("instances[%d] %q: %w", i, inst.Label, ErrOverrideUnpromoted)
		}
	}
	return nil
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
