package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/classattr/internal/registry"
)

// treeNode is the JSON shape printed by tree --json.
type treeNode struct {
	Name     string         `json:"name"`
	Declared []string       `json:"declared,omitempty"`
	Defaults map[string]any `json:"defaults,omitempty"`
	Children []treeNode     `json:"children,omitempty"`
}

type treeInstance struct {
	ID        string         `json:"id"`
	Label     string         `json:"label,omitempty"`
	Type      string         `json:"type"`
	Promoted  bool           `json:"promoted"`
	Overrides map[string]any `json:"overrides,omitempty"`
}

type treeOutput struct {
	Types     []treeNode     `json:"types"`
	Instances []treeInstance `json:"instances"`
}

func newTreeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the type hierarchy with each type's own defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, f)
			if err != nil {
				return err
			}
			out, err := buildTree(s.registry)
			if err != nil {
				return err
			}
			if f.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printTree(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func buildTree(reg *registry.Registry) (treeOutput, error) {
	var build func(name string) (treeNode, error)
	build = func(name string) (treeNode, error) {
		node, err := reg.Type(name)
		if err != nil {
			return treeNode{}, err
		}
		n := treeNode{Name: name, Defaults: node.Defaults()}
		if node.Parent() == nil {
			n.Declared = node.Declared()
		} else {
			n.Declared = ownDeclared(node.Declared(), node.Parent().Declared())
		}
		for _, child := range reg.Children(name) {
			c, err := build(child)
			if err != nil {
				return treeNode{}, err
			}
			n.Children = append(n.Children, c)
		}
		return n, nil
	}

	out := treeOutput{Types: []treeNode{}, Instances: []treeInstance{}}
	for _, root := range reg.Roots() {
		t, err := build(root)
		if err != nil {
			return treeOutput{}, err
		}
		out.Types = append(out.Types, t)
	}
	for _, inst := range reg.Instances() {
		ti := treeInstance{
			ID:       inst.ID(),
			Label:    reg.Label(inst),
			Type:     inst.Type().Name(),
			Promoted: inst.Promoted(),
		}
		if l := inst.Layer(); l != nil {
			ti.Overrides = l.Overrides()
		}
		out.Instances = append(out.Instances, ti)
	}
	return out, nil
}

// ownDeclared returns the names in chain that parent does not already see.
func ownDeclared(chain, parent []string) []string {
	inherited := make(map[string]bool, len(parent))
	for _, name := range parent {
		inherited[name] = true
	}
	var own []string
	for _, name := range chain {
		if !inherited[name] {
			own = append(own, name)
		}
	}
	return own
}

func printTree(w io.Writer, out treeOutput) {
	var walk func(n treeNode, depth int)
	walk = func(n treeNode, depth int) {
		line := strings.Repeat("  ", depth) + n.Name
		if len(n.Declared) > 0 {
			line += " declares [" + strings.Join(n.Declared, ", ") + "]"
		}
		if len(n.Defaults) > 0 {
			line += " " + formatMap(n.Defaults)
		}
		fmt.Fprintln(w, line)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range out.Types {
		walk(n, 0)
	}

	if len(out.Instances) == 0 {
		return
	}
	fmt.Fprintln(w, "instances:")
	for _, inst := range out.Instances {
		name := inst.Label
		if name == "" {
			name = inst.ID
		}
		line := fmt.Sprintf("  %s (%s)", name, inst.Type)
		if inst.Promoted {
			line += " promoted"
		}
		if len(inst.Overrides) > 0 {
			line += " " + formatMap(inst.Overrides)
		}
		fmt.Fprintln(w, line)
	}
}

// formatMap renders m as {k=v, ...} with sorted keys.
func formatMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatValue(m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
