package types

import (
	"fmt"
	"sync"
)

// Value sources reported by Instance.Explain.
const (
	SourceOverride = "override"
	SourceType     = "type"
	SourceBaseline = "baseline"
)

// Resolution describes where an instance's attribute value came from.
type Resolution struct {
	Value  any       // The resolved value; nil for the baseline.
	Source string    // One of the Source constants.
	Origin *TypeNode // The node holding the value when Source is SourceType.
}

// Instance is one object of a type. It reads attributes through its type
// until it is promoted, after which its private Layer may hold overrides
// that win over every type-level value for this instance alone.
type Instance struct {
	id  string
	typ *TypeNode

	mu    sync.RWMutex
	layer *Layer
}

// Layer is the private override slot of a promoted instance.
type Layer struct {
	instance *Instance

	mu        sync.RWMutex
	declared  map[string]struct{}
	overrides map[string]any
}

// InstanceAttribute is the instance-level getter installed by
// Layer.Declare. It consults the instance's override first and falls back to
// the instance's type chain.
type InstanceAttribute struct {
	instance *Instance
	name     string
}

// NewInstance creates an unpromoted instance of typ.
func NewInstance(id string, typ *TypeNode) *Instance {
	return &Instance{id: id, typ: typ}
}

// ID returns the instance identifier.
func (i *Instance) ID() string { return i.id }

// Type returns the instance's type node.
func (i *Instance) Type() *TypeNode { return i.typ }

// String implements fmt.Stringer.
func (i *Instance) String() string { return i.typ.name + "#" + i.id }

// Promote gives the instance its own override layer and returns it.
// Idempotent: later calls return the same layer.
func (i *Instance) Promote() *Layer {
	l, _ := i.PromoteOnce()
	return l
}

// PromoteOnce is Promote that also reports whether this call created the
// layer. Among concurrent callers exactly one sees created == true.
func (i *Instance) PromoteOnce() (l *Layer, created bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.layer == nil {
		i.layer = &Layer{
			instance:  i,
			declared:  make(map[string]struct{}),
			overrides: make(map[string]any),
		}
		created = true
	}
	return i.layer, created
}

// Layer returns the instance's override layer, or nil if it was never
// promoted.
func (i *Instance) Layer() *Layer {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.layer
}

// Promoted reports whether the instance has an override layer.
func (i *Instance) Promoted() bool {
	return i.Layer() != nil
}

// Get returns the instance's value for name: its override when one is set,
// otherwise the value resolved through its type chain.
// Returns ErrNotDeclared if name is declared neither on the type chain nor on
// the instance's layer.
func (i *Instance) Get(name string) (any, error) {
	res, err := i.Explain(name)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Explain resolves name like Get and reports which layer supplied the value.
func (i *Instance) Explain(name string) (Resolution, error) {
	l := i.Layer()
	if l != nil {
		if v, ok := l.override(name); ok {
			return Resolution{Value: v, Source: SourceOverride}, nil
		}
	}
	if !i.typ.IsDeclared(name) && (l == nil || !l.isDeclared(name)) {
		return Resolution{}, fmt.Errorf("get %q on instance %s: %w", name, i, ErrNotDeclared)
	}
	if v, origin, ok := i.typ.Lookup(name); ok {
		return Resolution{Value: v, Source: SourceType, Origin: origin}, nil
	}
	return Resolution{Source: SourceBaseline}, nil
}

// Override returns the instance's private value for name and whether one is
// set. Unpromoted instances never have overrides.
func (i *Instance) Override(name string) (any, bool) {
	l := i.Layer()
	if l == nil {
		return nil, false
	}
	return l.override(name)
}

// SetOverride records value as the instance's private value for name and
// returns it. The type node and every other instance are unaffected.
//
// An unpromoted instance is promoted first when its type chain declares name.
// Returns ErrInvalidPromotion if the instance is unpromoted and its type
// chain does not declare name, and ErrNotDeclared if the instance is promoted
// but name is declared neither on its layer nor on its type chain.
func (i *Instance) SetOverride(name string, value any) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("override on instance %s: %w", i, ErrInvalidName)
	}
	declaredOnType := i.typ.IsDeclared(name)
	l := i.Layer()
	if l == nil {
		if !declaredOnType {
			return nil, fmt.Errorf("override %q on instance %s: %w", name, i, ErrInvalidPromotion)
		}
		l = i.Promote()
	}
	if !declaredOnType && !l.isDeclared(name) {
		return nil, fmt.Errorf("override %q on instance %s: %w", name, i, ErrNotDeclared)
	}
	l.setOverride(name, value)
	return value, nil
}

// Instance returns the instance owning the layer.
func (l *Layer) Instance() *Instance { return l.instance }

// Declare installs instance-level getters for each name and returns them in
// order. Names declared here need not be declared on the instance's type;
// until an override is set they resolve through the type chain, which yields
// nil when no type declares them.
// Returns ErrInvalidName if any name is empty; nothing is declared then.
func (l *Layer) Declare(names ...string) ([]InstanceAttribute, error) {
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("declare on instance %s: %w", l.instance, ErrInvalidName)
		}
	}

	l.mu.Lock()
	for _, name := range names {
		l.declared[name] = struct{}{}
	}
	l.mu.Unlock()

	attrs := make([]InstanceAttribute, len(names))
	for i, name := range names {
		attrs[i] = InstanceAttribute{instance: l.instance, name: name}
	}
	return attrs, nil
}

// Declared returns the sorted names declared on the layer itself.
func (l *Layer) Declared() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.declared)
}

// Overrides returns a copy of the layer's override map.
func (l *Layer) Overrides() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]any, len(l.overrides))
	for k, v := range l.overrides {
		result[k] = v
	}
	return result
}

func (l *Layer) isDeclared(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.declared[name]
	return ok
}

func (l *Layer) override(name string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.overrides[name]
	return v, ok
}

func (l *Layer) setOverride(name string, value any) {
	l.mu.Lock()
	l.overrides[name] = value
	l.mu.Unlock()
}

// Name returns the attribute name.
func (a InstanceAttribute) Name() string { return a.name }

// Get returns the instance's override for the attribute, or the value
// resolved through the instance's type chain when none is set.
func (a InstanceAttribute) Get() any {
	if v, ok := a.instance.Override(a.name); ok {
		return v
	}
	return Resolve(a.instance.typ, a.name)
}

// Set records value as the instance's override and returns it.
func (a InstanceAttribute) Set(value any) any {
	a.instance.Promote().setOverride(a.name, value)
	return value
}
