// Package registry implements types.Registry: it creates type nodes, links
// them to their parents, hands out instances, and builds all of this from a
// manifest.
package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/classattr/pkg/types"
)

var _ types.Registry = (*Registry)(nil)

// Registry indexes type nodes by name and instances by ID and label. It is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	types     map[string]*types.TypeNode
	children  map[string][]string
	instances map[string]*types.Instance
	labels    map[string]string // label -> instance ID
	order     []string          // instance IDs in creation order
}

// New creates an empty registry. A nil logger discards log output.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		logger:    logger,
		types:     make(map[string]*types.TypeNode),
		children:  make(map[string][]string),
		instances: make(map[string]*types.Instance),
		labels:    make(map[string]string),
	}
}

// DefineType creates a type node named name under parent. An empty parent
// makes a root.
func (r *Registry) DefineType(name, parent string) (*types.TypeNode, error) {
	if name == "" {
		return nil, fmt.Errorf("define type: %w", types.ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; ok {
		return nil, fmt.Errorf("define type %q: %w", name, types.ErrDuplicateName)
	}

	var node *types.TypeNode
	if parent == "" {
		node = types.NewRoot(name)
	} else {
		p, ok := r.types[parent]
		if !ok {
			return nil, fmt.Errorf("define type %q: parent %q: %w", name, parent, types.ErrTypeNotFound)
		}
		node = p.NewChild(name)
	}
	r.types[name] = node
	r.children[parent] = append(r.children[parent], name)

	r.logger.Debug("type defined", "type", name, "parent", parent)
	return node, nil
}

// Type returns the node with the given name.
func (r *Registry) Type(name string) (*types.TypeNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("type %q: %w", name, types.ErrTypeNotFound)
	}
	return node, nil
}

// Types returns all type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Roots returns the names of types without a parent, in definition order.
func (r *Registry) Roots() []string {
	return r.Children("")
}

// Children returns the names of the direct children of the named type, in
// definition order.
func (r *Registry) Children(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.children[name]...)
}

// NewInstance creates an unpromoted instance of the named type with a UUID v7
// identifier. A non-empty label must be unique.
func (r *Registry) NewInstance(typeName, label string) (*types.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.types[typeName]
	if !ok {
		return nil, fmt.Errorf("new instance of %q: %w", typeName, types.ErrTypeNotFound)
	}
	if label != "" {
		if _, taken := r.labels[label]; taken {
			return nil, fmt.Errorf("new instance %q: %w", label, types.ErrDuplicateName)
		}
	}

	inst := types.NewInstance(generateUUID(), node)
	r.instances[inst.ID()] = inst
	r.order = append(r.order, inst.ID())
	if label != "" {
		r.labels[label] = inst.ID()
	}

	r.logger.Debug("instance created", "type", typeName, "id", inst.ID(), "label", label)
	return inst, nil
}

// Instance returns the instance with the given label or ID. Labels are
// checked first.
func (r *Registry) Instance(idOrLabel string) (*types.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := idOrLabel
	if mapped, ok := r.labels[idOrLabel]; ok {
		id = mapped
	}
	inst, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("instance %q: %w", idOrLabel, types.ErrInstanceNotFound)
	}
	return inst, nil
}

// Instances returns all instances in creation order.
func (r *Registry) Instances() []*types.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*types.Instance, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.instances[id])
	}
	return result
}

// Label returns the label an instance was created with, if any.
func (r *Registry) Label(inst *types.Instance) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for label, id := range r.labels {
		if id == inst.ID() {
			return label
		}
	}
	return ""
}

// Promote promotes an instance and logs it. It is equivalent to
// inst.Promote for callers that do not need the log entry.
func (r *Registry) Promote(inst *types.Instance) *types.Layer {
	l, created := inst.PromoteOnce()
	if created {
		r.logger.Debug("instance promoted", "id", inst.ID(), "type", inst.Type().Name())
	}
	return l
}

// generateUUID generates a new UUID v7 for instance IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
