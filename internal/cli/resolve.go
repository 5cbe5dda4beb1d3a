package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/classattr/pkg/types"
)

var errTargetNotFound = errors.New("no type or instance with that name")

// explanation is the JSON shape printed by resolve and explain.
type explanation struct {
	Target    string `json:"target"`
	Kind      string `json:"kind"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
	Source    string `json:"source,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

func newResolveCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <type|instance> <attribute>",
		Short: "Print the resolved value of an attribute",
		Long: `Resolve looks the target up as a type name first, then as an instance label
or ID, and prints the value the attribute resolves to.

Example:
  classattr resolve Derived enabled
  classattr resolve d enabled`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := explainTarget(cmd, f, args[0], args[1])
			if err != nil {
				return err
			}
			if f.jsonMode {
				exp.Source, exp.Origin = "", ""
				return writeJSON(cmd.OutOrStdout(), exp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(exp.Value))
			return nil
		},
	}
}

func newExplainCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <type|instance> <attribute>",
		Short: "Print an attribute's value and where it came from",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := explainTarget(cmd, f, args[0], args[1])
			if err != nil {
				return err
			}
			if f.jsonMode {
				return writeJSON(cmd.OutOrStdout(), exp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s.%s = %s\n", exp.Kind, exp.Target, exp.Attribute, formatValue(exp.Value))
			switch exp.Source {
			case types.SourceType:
				fmt.Fprintf(out, "source: type %s\n", exp.Origin)
			default:
				fmt.Fprintf(out, "source: %s\n", exp.Source)
			}
			return nil
		},
	}
}

// explainTarget loads the session and resolves attr on the named type or
// instance.
func explainTarget(cmd *cobra.Command, f *rootFlags, target, attr string) (explanation, error) {
	s, err := openSession(cmd, f)
	if err != nil {
		return explanation{}, err
	}
	exp := explanation{Target: target, Attribute: attr}

	if node, err := s.registry.Type(target); err == nil {
		if !node.IsDeclared(attr) {
			return explanation{}, fmt.Errorf("type %s: %q: %w", target, attr, types.ErrNotDeclared)
		}
		exp.Kind = "type"
		exp.Source = types.SourceBaseline
		if v, origin, ok := node.Lookup(attr); ok {
			exp.Value, exp.Source, exp.Origin = v, types.SourceType, origin.Name()
		}
		return exp, nil
	}

	inst, err := s.registry.Instance(target)
	if err != nil {
		return explanation{}, fmt.Errorf("%q: %w", target, errTargetNotFound)
	}
	res, err := inst.Explain(attr)
	if err != nil {
		return explanation{}, err
	}
	exp.Kind = "instance"
	exp.Value, exp.Source = res.Value, res.Source
	if res.Origin != nil {
		exp.Origin = res.Origin.Name()
	}
	s.logger.Debug("resolved", "target", target, "attribute", attr, "source", res.Source)
	return exp, nil
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
