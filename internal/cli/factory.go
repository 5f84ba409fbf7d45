package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/detentlabs/detent"
	"github.com/detentlabs/detent/internal/logging"
	"github.com/detentlabs/detent/pkg/adapters/yamldef"
	"github.com/detentlabs/detent/pkg/fsm"
)

// Machine is the shape every CLI-loaded machine runs with: string states,
// string events, a mutable map context.
type Machine = detent.Machine[string, string, map[string]any]

// Listener is the listener shape matching Machine.
type Listener = fsm.Listener[string, string, map[string]any]

// LoadMachine reads the definition at path, compiles it against the builtin
// registry and wraps it in a machine with standard CLI conventions. Extra
// listeners are attached before the configuration is built.
func LoadMachine(path string, logger *slog.Logger, listeners ...Listener) (*Machine, *yamldef.Definition, error) {
	def, err := yamldef.Load(path)
	if err != nil {
		return nil, nil, err
	}

	m, err := BuildMachine(def, logger, listeners...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, def, nil
}

// BuildMachine compiles an already-parsed definition. Callers that needed
// the definition first, for example to derive the machine name for metric
// labels, use this to avoid reading the file twice.
func BuildMachine(def *yamldef.Definition, logger *slog.Logger, listeners ...Listener) (*Machine, error) {
	spec, err := def.Spec(Builtins(logger))
	if err != nil {
		return nil, err
	}
	spec.Listeners = append(spec.Listeners, listeners...)

	return detent.New(fsm.NewConfig(spec), detent.WithLogger(logger)), nil
}

// MachineName returns the name to report for a definition: the declared
// name, or the definition file's base name without extension.
func MachineName(def *yamldef.Definition, path string) string {
	if def.Name != "" {
		return def.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewLogger configures the CLI logger. Debug mode writes to stderr so log
// lines stay out of the stdout flow; otherwise the logger is silent.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}
