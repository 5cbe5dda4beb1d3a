package types

import (
	"fmt"
	"sort"
	"sync"
)

// TypeNode is one type in a single-parent hierarchy. It holds the attribute
// names declared at this node and the sparse set of defaults set here; an
// absent default means "inherit from the parent".
//
// The parent is fixed when the node is created, so the hierarchy is always a
// finite tree and resolution always terminates.
type TypeNode struct {
	name   string
	parent *TypeNode

	mu       sync.RWMutex
	declared map[string]struct{}
	defaults map[string]any
}

// NewRoot creates a type node with no parent.
func NewRoot(name string) *TypeNode {
	return newTypeNode(name, nil)
}

// NewChild creates a type node whose parent is n.
func (n *TypeNode) NewChild(name string) *TypeNode {
	return newTypeNode(name, n)
}

func newTypeNode(name string, parent *TypeNode) *TypeNode {
	return &TypeNode{
		name:     name,
		parent:   parent,
		declared: make(map[string]struct{}),
		defaults: make(map[string]any),
	}
}

// Name returns the node's name.
func (n *TypeNode) Name() string { return n.name }

// Parent returns the node's parent, or nil for a root.
func (n *TypeNode) Parent() *TypeNode { return n.parent }

// String implements fmt.Stringer.
func (n *TypeNode) String() string { return n.name }

// Ancestors returns the resolution chain starting at n and ending at the
// root.
func (n *TypeNode) Ancestors() []*TypeNode {
	var chain []*TypeNode
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// IsDescendantOf reports whether other is n or one of n's ancestors.
func (n *TypeNode) IsDescendantOf(other *TypeNode) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Lookup walks from n toward the root and returns the nearest value set for
// name together with the node that holds it. When no node on the chain has a
// value, Lookup returns nil, nil, false.
//
// Each node is read-locked only for its own map lookup. Writes are single map
// insertions, so a reader sees each node either before or after a write,
// never in between.
func (n *TypeNode) Lookup(name string) (any, *TypeNode, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := cur.ownDefault(name); ok {
			return v, cur, true
		}
	}
	return nil, nil, false
}

// Resolve returns the nearest value set for name on the chain starting at n,
// or nil when there is none. It does not require name to be declared.
func Resolve(n *TypeNode, name string) any {
	v, _, _ := n.Lookup(name)
	return v
}

// Get returns the resolved value of a declared attribute.
// Returns ErrNotDeclared if name is not declared on n or any ancestor.
func (n *TypeNode) Get(name string) (any, error) {
	if !n.IsDeclared(name) {
		return nil, fmt.Errorf("get %q on type %s: %w", name, n.name, ErrNotDeclared)
	}
	return Resolve(n, name), nil
}

// Set records value as n's own default for name and returns it. The value
// shadows every ancestor's value for n and its descendants.
// Returns ErrNotDeclared if name is not declared on n or any ancestor.
func (n *TypeNode) Set(name string, value any) (any, error) {
	if !n.IsDeclared(name) {
		return nil, fmt.Errorf("set %q on type %s: %w", name, n.name, ErrNotDeclared)
	}
	n.setDefault(name, value)
	return value, nil
}

// IsDeclared reports whether name was declared on n or one of its ancestors.
func (n *TypeNode) IsDeclared(name string) bool {
	for cur := n; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		_, ok := cur.declared[name]
		cur.mu.RUnlock()
		if ok {
			return true
		}
	}
	return false
}

// Declared returns the sorted names visible on n's chain.
func (n *TypeNode) Declared() []string {
	seen := make(map[string]struct{})
	for cur := n; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for name := range cur.declared {
			seen[name] = struct{}{}
		}
		cur.mu.RUnlock()
	}
	return sortedKeys(seen)
}

// Defaults returns a copy of the values set at n itself. Inherited values
// are not included.
func (n *TypeNode) Defaults() map[string]any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	result := make(map[string]any, len(n.defaults))
	for k, v := range n.defaults {
		result[k] = v
	}
	return result
}

func (n *TypeNode) ownDefault(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.defaults[name]
	return v, ok
}

func (n *TypeNode) setDefault(name string, value any) {
	n.mu.Lock()
	n.defaults[name] = value
	n.mu.Unlock()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
