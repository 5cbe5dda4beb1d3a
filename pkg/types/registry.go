package types

// Registry builds and indexes a type hierarchy and the instances of its
// types. The core types do not need a Registry; it is the collaborator that
// creates nodes, links them to parents, and hands out instances.
type Registry interface {
	// DefineType creates a type node. An empty parent makes a root.
	// Returns ErrTypeNotFound if parent is not defined and
	// ErrDuplicateName if name is already defined.
	DefineType(name, parent string) (*TypeNode, error)

	// Type returns the node with the given name.
	// Returns ErrTypeNotFound if no such type exists.
	Type(name string) (*TypeNode, error)

	// Types returns all type names, sorted.
	Types() []string

	// NewInstance creates an unpromoted instance of the named type. The
	// label is optional; when set it must be unique and can be used in
	// place of the generated ID.
	NewInstance(typeName, label string) (*Instance, error)

	// Instance returns the instance with the given ID or label.
	// Returns ErrInstanceNotFound if none matches.
	Instance(idOrLabel string) (*Instance, error)
}
