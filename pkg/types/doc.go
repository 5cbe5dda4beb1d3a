// Package types defines the type hierarchy, the instance override layer,
// attribute declaration and resolution, the Registry interface, and the
// standard errors for classattr.
//
// An attribute is declared on a TypeNode. Its value is looked up from that
// node toward the root; the nearest node with its own value wins and the
// baseline is nil. A promoted Instance may hold a private override that wins
// over every type-level value for that instance alone.
//
//	base := types.NewRoot("Base")
//	derived := base.NewChild("Derived")
//	enabled, _ := base.Declare("enabled")
//	enabled[0].Set(true)
//	v, _ := derived.Get("enabled") // true
package types
