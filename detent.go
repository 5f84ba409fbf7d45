package detent

import (
	"log/slog"

	"github.com/detentlabs/detent/internal/logging"
	"github.com/detentlabs/detent/internal/runtime"
	"github.com/detentlabs/detent/internal/validator"
	"github.com/detentlabs/detent/pkg/fsm"
)

// Version is the library version reported by the CLI and the adapters.
var Version = "0.3.0"

// Machine is the high-level entry point for the detent library.
// It wraps the internal dispatch engine and the static validator behind one
// stateless surface: the machine holds no current state, callers pass the
// state into every dispatch and keep the one that comes back.
type Machine[S comparable, E comparable, C any] struct {
	engine *runtime.Engine[S, E, C]
	cfg    *fsm.Config[S, E, C]
	logger *slog.Logger
}

// Option defines a functional option for configuring a Machine.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	cacheCap *int
}

// WithLogger sets a custom structured logger for the machine.
// Without it the machine is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResultCacheCap overrides the dispatch result cache capacity.
// Zero disables caching.
func WithResultCacheCap(n int) Option {
	return func(o *options) {
		o.cacheCap = &n
	}
}

// New creates a Machine over a finished configuration. The configuration
// must not be mutated afterwards; with that the machine is safe for
// concurrent use without external synchronization.
func New[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C], opts ...Option) *Machine[S, E, C] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	engineOpts := []runtime.Option{runtime.WithLogger(logger)}
	if o.cacheCap != nil {
		engineOpts = append(engineOpts, runtime.WithResultCacheCap(*o.cacheCap))
	}

	return &Machine[S, E, C]{
		engine: runtime.New(cfg, engineOpts...),
		cfg:    cfg,
		logger: logger,
	}
}

// Fire dispatches event in state and returns only the resulting state.
// It never panics; on any failure it returns the state the full result
// would report, usually the unchanged input state.
func (m *Machine[S, E, C]) Fire(state S, event E, ctx C) S {
	return m.engine.Fire(state, event, ctx)
}

// FireWithResult dispatches event in state and reports the full outcome
// including the reason and, for failures, a debug payload.
func (m *Machine[S, E, C]) FireWithResult(state S, event E, ctx C) fsm.Result[S] {
	return m.engine.FireWithResult(state, event, ctx)
}

// CanFire reports whether some rule would accept event in state, without
// executing anything. It returns false for unconfigured and final states.
func (m *Machine[S, E, C]) CanFire(state S, event E, ctx C) bool {
	return m.engine.CanFire(state, event, ctx)
}

// IsFinalState reports whether state is configured and final.
func (m *Machine[S, E, C]) IsFinalState(state S) bool {
	return m.engine.IsFinalState(state)
}

// Info returns an introspection snapshot of the configuration.
func (m *Machine[S, E, C]) Info() fsm.Info[S, E] {
	return m.engine.Info()
}

// Validate checks the configuration for structural defects: unknown
// targets, unreachable states, rules on final states, duplicate
// unconditional rules and transition cycles. It accumulates every finding
// instead of stopping at the first.
func (m *Machine[S, E, C]) Validate() fsm.ValidationResult {
	return validator.Validate(m.cfg)
}

// Initial returns the machine's initial state.
func (m *Machine[S, E, C]) Initial() S {
	return m.cfg.Initial()
}
