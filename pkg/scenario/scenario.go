// Package scenario runs scripted event sequences against a machine and
// reports which expectations held. Scenario files drive the "test"
// command and double as executable documentation of a definition.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted run: an optional seed context, an optional
// starting state and the ordered steps to fire.
type Scenario struct {
	Name    string         `yaml:"name"`
	Start   string         `yaml:"start,omitempty"`
	Context map[string]any `yaml:"context,omitempty"`
	Steps   []Step         `yaml:"steps"`
}

// Step fires one event and states what should happen. Empty expectation
// fields are not checked.
type Step struct {
	Fire           string `yaml:"fire"`
	ExpectState    string `yaml:"expect_state,omitempty"`
	ExpectOutcome  string `yaml:"expect_outcome,omitempty"`
	ReasonContains string `yaml:"reason_contains,omitempty"`
}

// File is a scenario document: one or more scenarios for a machine.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads and parses a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scenario document and checks its shape.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}

	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("document has no scenarios")
	}
	for i, sc := range f.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d missing name", i)
		}
		if len(sc.Steps) == 0 {
			return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
		}
		for j, step := range sc.Steps {
			if step.Fire == "" {
				return nil, fmt.Errorf("scenario %q step %d missing event", sc.Name, j)
			}
		}
	}

	return &f, nil
}
