package cli

import (
	"fmt"
	"log/slog"

	"github.com/detentlabs/detent/pkg/adapters/yamldef"
	"github.com/detentlabs/detent/pkg/fsm"
	"github.com/detentlabs/detent/pkg/registry"
)

// Builtins returns the guard and action registry available to YAML
// definitions run through the CLI. Everything operates on the string/map
// shape the loader produces; actions that report progress write through
// logger so they stay off stdout.
func Builtins(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry()

	reg.RegisterGuard("always", func(fsm.Transition[string, string], map[string]any) bool {
		return true
	})
	reg.RegisterGuard("never", func(fsm.Transition[string, string], map[string]any) bool {
		return false
	})

	reg.RegisterGuardFactory("context_has", func(args map[string]any) (registry.Guard, error) {
		var cfg struct {
			Key string `mapstructure:"key"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`context_has needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) bool {
			_, ok := ctx[cfg.Key]
			return ok
		}, nil
	})

	reg.RegisterGuardFactory("context_equals", func(args map[string]any) (registry.Guard, error) {
		var cfg struct {
			Key   string `mapstructure:"key"`
			Value any    `mapstructure:"value"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`context_equals needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) bool {
			v, ok := ctx[cfg.Key]
			if !ok {
				return false
			}
			// Context values arrive as YAML scalars, JSON numbers or Go
			// literals depending on the caller; compare their printed forms
			// so 1, 1.0 and int64(1) all match.
			return fmt.Sprint(v) == fmt.Sprint(cfg.Value)
		}, nil
	})

	reg.RegisterGuardFactory("context_at_least", func(args map[string]any) (registry.Guard, error) {
		var cfg struct {
			Key string  `mapstructure:"key"`
			Min float64 `mapstructure:"min"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`context_at_least needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) bool {
			v, ok := asFloat(ctx[cfg.Key])
			return ok && v >= cfg.Min
		}, nil
	})

	reg.RegisterActionFactory("set", func(args map[string]any) (registry.Action, error) {
		var cfg struct {
			Key   string `mapstructure:"key"`
			Value any    `mapstructure:"value"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`set needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) error {
			ctx[cfg.Key] = cfg.Value
			return nil
		}, nil
	})

	reg.RegisterActionFactory("unset", func(args map[string]any) (registry.Action, error) {
		var cfg struct {
			Key string `mapstructure:"key"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`unset needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) error {
			delete(ctx, cfg.Key)
			return nil
		}, nil
	})

	reg.RegisterActionFactory("increment", func(args map[string]any) (registry.Action, error) {
		cfg := struct {
			Key string  `mapstructure:"key"`
			By  float64 `mapstructure:"by"`
		}{By: 1}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Key == "" {
			return nil, fmt.Errorf(`increment needs a "key"`)
		}
		return func(_ fsm.Transition[string, string], ctx map[string]any) error {
			current, _ := asFloat(ctx[cfg.Key])
			ctx[cfg.Key] = current + cfg.By
			return nil
		}, nil
	})

	reg.RegisterActionFactory("log", func(args map[string]any) (registry.Action, error) {
		var cfg struct {
			Message string `mapstructure:"message"`
		}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		if cfg.Message == "" {
			return nil, fmt.Errorf(`log needs a "message"`)
		}
		return func(t fsm.Transition[string, string], _ map[string]any) error {
			logger.Info(cfg.Message, "from", t.From, "to", t.To, "event", t.Event)
			return nil
		}, nil
	})

	reg.RegisterActionFactory("fail", func(args map[string]any) (registry.Action, error) {
		cfg := struct {
			Message string `mapstructure:"message"`
		}{Message: "forced failure"}
		if err := yamldef.DecodeArgs(args, &cfg); err != nil {
			return nil, err
		}
		return func(fsm.Transition[string, string], map[string]any) error {
			return fmt.Errorf("%s", cfg.Message)
		}, nil
	})

	return reg
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
