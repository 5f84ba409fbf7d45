package yamldef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/detentlabs/detent/pkg/fsm"
	"github.com/detentlabs/detent/pkg/registry"
)

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition and checks its shape. Graph-level defects such
// as unreachable states or dangling targets are left to the validator so
// they come back as an accumulated report instead of a single parse error.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}

	if def.Initial == "" {
		return nil, fmt.Errorf("definition missing initial state")
	}
	if len(def.States) == 0 {
		return nil, fmt.Errorf("definition has no states")
	}
	for i, s := range def.States {
		if s.Name == "" {
			return nil, fmt.Errorf("state %d missing name", i)
		}
	}

	return &def, nil
}

// Spec resolves guard and action references against reg and returns the
// machine draft. Callers that need more than the document declares, such as
// listeners or an error handler, attach them to the draft before building.
func (d *Definition) Spec(reg *registry.Registry) (fsm.ConfigSpec[string, string, map[string]any], error) {
	spec := fsm.ConfigSpec[string, string, map[string]any]{Initial: d.Initial}

	for _, s := range d.States {
		ss, err := compileState(s, reg)
		if err != nil {
			return spec, err
		}
		spec.States = append(spec.States, ss)
	}

	return spec, nil
}

// Compile resolves guard and action references against reg and builds the
// immutable machine configuration.
func (d *Definition) Compile(reg *registry.Registry) (*fsm.Config[string, string, map[string]any], error) {
	spec, err := d.Spec(reg)
	if err != nil {
		return nil, err
	}
	return fsm.NewConfig(spec), nil
}

func compileState(s State, reg *registry.Registry) (fsm.StateSpec[string, string, map[string]any], error) {
	ss := fsm.StateSpec[string, string, map[string]any]{State: s.Name, Final: s.Final}

	for _, ref := range s.OnEntry {
		a, err := reg.NewAction(ref.Name, ref.With)
		if err != nil {
			return ss, fmt.Errorf("state %q on_entry: %w", s.Name, err)
		}
		ss.OnEntry = append(ss.OnEntry, a)
	}
	for _, ref := range s.OnExit {
		a, err := reg.NewAction(ref.Name, ref.With)
		if err != nil {
			return ss, fmt.Errorf("state %q on_exit: %w", s.Name, err)
		}
		ss.OnExit = append(ss.OnExit, a)
	}

	for i, r := range s.Rules {
		rule, err := compileRule(s.Name, r, reg)
		if err != nil {
			return ss, fmt.Errorf("state %q rule %d: %w", s.Name, i, err)
		}
		ss.Rules = append(ss.Rules, rule)
	}

	return ss, nil
}

func compileRule(state string, r Rule, reg *registry.Registry) (fsm.Rule[string, string, map[string]any], error) {
	var rule fsm.Rule[string, string, map[string]any]

	kind, err := resolveKind(r)
	if err != nil {
		return rule, err
	}

	switch kind {
	case fsm.KindPermit:
		if r.On == "" || r.To == "" {
			return rule, fmt.Errorf(`permit rule needs both "on" and "to"`)
		}
		rule = fsm.Rule[string, string, map[string]any]{Kind: fsm.KindPermit, Event: r.On, HasEvent: true, Target: r.To}

	case fsm.KindPermitReentry:
		if r.On == "" {
			return rule, fmt.Errorf(`reentry rule needs "on"`)
		}
		if r.To != "" && r.To != state {
			return rule, fmt.Errorf("reentry rule cannot target %q", r.To)
		}
		rule = fsm.Rule[string, string, map[string]any]{Kind: fsm.KindPermitReentry, Event: r.On, HasEvent: true, Target: state}

	case fsm.KindIgnore:
		if r.On == "" {
			return rule, fmt.Errorf(`ignore rule needs "on"`)
		}
		if r.To != "" {
			return rule, fmt.Errorf("ignore rule cannot have a target")
		}
		rule = fsm.Rule[string, string, map[string]any]{Kind: fsm.KindIgnore, Event: r.On, HasEvent: true, Target: state}

	case fsm.KindInternal:
		if r.On == "" {
			return rule, fmt.Errorf(`internal rule needs "on"`)
		}
		if r.To != "" {
			return rule, fmt.Errorf("internal rule cannot have a target")
		}
		rule = fsm.Rule[string, string, map[string]any]{Kind: fsm.KindInternal, Event: r.On, HasEvent: true, Target: state}

	case fsm.KindAutoTransition:
		if r.To == "" {
			return rule, fmt.Errorf(`auto rule needs "to"`)
		}
		if r.On != "" {
			return rule, fmt.Errorf(`auto rule cannot have "on"`)
		}
		rule = fsm.Rule[string, string, map[string]any]{Kind: fsm.KindAutoTransition, Target: r.To}
	}

	if r.Guard != nil {
		g, err := reg.NewGuard(r.Guard.Name, r.Guard.With)
		if err != nil {
			return rule, err
		}
		rule.Guard = g
	}

	if r.Action != nil {
		if kind != fsm.KindInternal {
			return rule, fmt.Errorf("only internal rules can carry an action")
		}
		a, err := reg.NewAction(r.Action.Name, r.Action.With)
		if err != nil {
			return rule, err
		}
		rule.Action = a
	}

	return rule, nil
}

func resolveKind(r Rule) (fsm.RuleKind, error) {
	switch r.Kind {
	case "permit":
		return fsm.KindPermit, nil
	case "reentry", "permit-reentry":
		return fsm.KindPermitReentry, nil
	case "ignore":
		return fsm.KindIgnore, nil
	case "internal":
		return fsm.KindInternal, nil
	case "auto":
		return fsm.KindAutoTransition, nil
	case "":
		// Shorthand: "on" plus "to" is a permit, "to" alone is an auto
		// transition.
		if r.To != "" && r.On != "" {
			return fsm.KindPermit, nil
		}
		if r.To != "" {
			return fsm.KindAutoTransition, nil
		}
		return 0, fmt.Errorf("rule needs a kind or a target")
	default:
		return 0, fmt.Errorf("unknown rule kind: %s", r.Kind)
	}
}
