package types

import "fmt"

// Attribute is the getter/setter pair installed by Declare for one
// attribute name on one type node.
type Attribute struct {
	node *TypeNode
	name string
}

// Declare installs accessors for each name on n and returns them in order.
// Declaring a name that is already declared re-wires the accessor and leaves
// any value already set untouched. Declaration is inherited: descendants of
// n may get and set the attribute without declaring it themselves.
// Returns ErrInvalidName if any name is empty; nothing is declared then.
func (n *TypeNode) Declare(names ...string) ([]Attribute, error) {
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("declare on type %s: %w", n.name, ErrInvalidName)
		}
	}

	n.mu.Lock()
	for _, name := range names {
		n.declared[name] = struct{}{}
	}
	n.mu.Unlock()

	attrs := make([]Attribute, len(names))
	for i, name := range names {
		attrs[i] = Attribute{node: n, name: name}
	}
	return attrs, nil
}

// Attr returns the accessor for name bound to n.
// Returns ErrNotDeclared if name is not declared on n or any ancestor.
func (n *TypeNode) Attr(name string) (Attribute, error) {
	if !n.IsDeclared(name) {
		return Attribute{}, fmt.Errorf("attribute %q on type %s: %w", name, n.name, ErrNotDeclared)
	}
	return Attribute{node: n, name: name}, nil
}

// Name returns the attribute name.
func (a Attribute) Name() string { return a.name }

// Node returns the type node the accessor is bound to.
func (a Attribute) Node() *TypeNode { return a.node }

// Get returns the value resolved from the bound node toward the root, or nil
// when no node on the chain has a value.
func (a Attribute) Get() any {
	return Resolve(a.node, a.name)
}

// Set records value as the bound node's own default and returns it.
func (a Attribute) Set(value any) any {
	a.node.setDefault(a.name, value)
	return value
}
