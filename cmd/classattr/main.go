// Command classattr inspects a type hierarchy described by a manifest and
// resolves inherited attribute values.
package main

import "github.com/mesh-intelligence/classattr/internal/cli"

func main() {
	cli.Execute()
}
