// Package yamldef loads machine definitions from YAML documents and
// compiles them into runnable configurations. Guards and actions are
// referenced by name and resolved against a registry at compile time, so
// definitions stay declarative while behavior lives in code.
package yamldef

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Definition is the root of a YAML machine definition.
type Definition struct {
	Name    string         `yaml:"name"`
	Initial string         `yaml:"initial"`
	Context map[string]any `yaml:"context,omitempty"`
	States  []State        `yaml:"states"`
}

// State declares one state, its lifecycle actions and its rules.
type State struct {
	Name    string `yaml:"name"`
	Final   bool   `yaml:"final,omitempty"`
	OnEntry []Ref  `yaml:"on_entry,omitempty"`
	OnExit  []Ref  `yaml:"on_exit,omitempty"`
	Rules   []Rule `yaml:"rules,omitempty"`
}

// Rule declares one transition rule. Kind is one of "permit", "reentry",
// "ignore", "internal" or "auto"; when omitted it is inferred: a rule with
// both "on" and "to" is a permit, a rule with only "to" is an auto
// transition.
type Rule struct {
	Kind   string `yaml:"kind,omitempty"`
	On     string `yaml:"on,omitempty"`
	To     string `yaml:"to,omitempty"`
	Guard  *Ref   `yaml:"guard,omitempty"`
	Action *Ref   `yaml:"action,omitempty"`
}

// Ref references a registered guard or action. It accepts either a bare
// name or a name with arguments:
//
//	guard: always
//	guard: {name: context_equals, with: {key: tier, value: gold}}
type Ref struct {
	Name string         `yaml:"name"`
	With map[string]any `yaml:"with,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form of a reference.
func (r *Ref) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&r.Name)
	}

	type plain Ref // prevent recursion
	var tmp plain
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*r = Ref(tmp)

	if r.Name == "" {
		return fmt.Errorf("reference missing name")
	}
	return nil
}

// DecodeArgs decodes a "with" argument map into a typed options struct.
// Guard and action factories use it to validate their arguments at load
// time instead of on every dispatch.
func DecodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
