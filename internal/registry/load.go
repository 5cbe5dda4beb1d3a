package registry

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/classattr/internal/manifest"
	"github.com/mesh-intelligence/classattr/pkg/types"
)

// Load builds the types and instances described by m. Types are defined
// parents first regardless of their order in the manifest. All declarations
// are made before any default is set, so a type may set a default for an
// attribute declared on a type listed after it.
//
// m is validated first, so a manifest built in code gets the same checks as
// a parsed one. Parents are checked before anything is created: a parent that is neither
// in m nor already registered yields ErrTypeNotFound, and a parent loop
// yields ErrCycle. Later failures (an undeclared default, an unknown
// instance type) leave what was built so far in place.
func (r *Registry) Load(m *manifest.Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	ordered, err := r.orderTypes(m.Types)
	if err != nil {
		return err
	}

	nodes := make([]*types.TypeNode, len(ordered))
	for i, t := range ordered {
		node, err := r.DefineType(t.Name, t.Parent)
		if err != nil {
			return err
		}
		if _, err := node.Declare(t.Attributes...); err != nil {
			return err
		}
		nodes[i] = node
	}

	for i, t := range ordered {
		for _, name := range sortedNames(t.Defaults) {
			if _, err := nodes[i].Set(name, t.Defaults[name]); err != nil {
				return err
			}
		}
	}

	for _, spec := range m.Instances {
		if err := r.loadInstance(spec); err != nil {
			return err
		}
	}

	r.logger.Info("manifest loaded", "types", len(m.Types), "instances", len(m.Instances))
	return nil
}

func (r *Registry) loadInstance(spec manifest.Instance) error {
	inst, err := r.NewInstance(spec.Type, spec.Label)
	if err != nil {
		return err
	}
	if !spec.Promote {
		return nil
	}

	layer := r.Promote(inst)
	if _, err := layer.Declare(spec.Attributes...); err != nil {
		return err
	}
	for _, name := range sortedNames(spec.Overrides) {
		if _, err := inst.SetOverride(name, spec.Overrides[name]); err != nil {
			return err
		}
	}
	return nil
}

// orderTypes returns the manifest types sorted so that every parent precedes
// its children.
func (r *Registry) orderTypes(specs []manifest.Type) ([]manifest.Type, error) {
	inManifest := make(map[string]bool, len(specs))
	for _, t := range specs {
		inManifest[t.Name] = true
	}

	r.mu.RLock()
	defined := make(map[string]bool, len(r.types))
	for name := range r.types {
		defined[name] = true
	}
	r.mu.RUnlock()

	for _, t := range specs {
		if t.Parent != "" && !inManifest[t.Parent] && !defined[t.Parent] {
			return nil, fmt.Errorf("type %q: parent %q: %w", t.Name, t.Parent, types.ErrTypeNotFound)
		}
	}

	ordered := make([]manifest.Type, 0, len(specs))
	pending := specs
	for len(pending) > 0 {
		var next []manifest.Type
		for _, t := range pending {
			if t.Parent == "" || defined[t.Parent] {
				ordered = append(ordered, t)
				defined[t.Name] = true
			} else {
				next = append(next, t)
			}
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("type %q: %w", next[0].Name, types.ErrCycle)
		}
		pending = next
	}
	return ordered, nil
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
