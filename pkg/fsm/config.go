package fsm

// ConfigSpec is the mutable draft of a whole machine. The dsl package
// assembles one incrementally; NewConfig consumes it into the immutable
// built form. States appear in declaration order and a state may appear more
// than once, in which case its rules and actions merge in order.
type ConfigSpec[S comparable, E comparable, C any] struct {
	Initial S
	States  []StateSpec[S, E, C]

	// Global hooks run on every transition regardless of the states
	// involved, bracketing the per-state actions.
	OnAnyEntry      []Action[S, E, C]
	OnAnyExit       []Action[S, E, C]
	OnAnyTransition []Action[S, E, C]

	Listeners    []Listener[S, E, C]
	ErrorHandler ErrorHandler[S, E, C]
}

// Config is the built, deeply read-only form of a machine configuration.
// After NewConfig returns, a Config is never mutated and is safe for any
// number of concurrent readers. Defects such as unreachable states or
// dangling targets are not rejected here; they are the validator's job, and
// the engine reports them per dispatch.
type Config[S comparable, E comparable, C any] struct {
	initial S
	states  map[S]*StateDef[S, E, C]
	order   []S

	onAnyEntry      []Action[S, E, C]
	onAnyExit       []Action[S, E, C]
	onAnyTransition []Action[S, E, C]

	listeners    []Listener[S, E, C]
	errorHandler ErrorHandler[S, E, C]
}

// NewConfig builds the immutable configuration from a draft. Slices are
// copied so later mutation of the spec cannot leak into the built form.
func NewConfig[S comparable, E comparable, C any](spec ConfigSpec[S, E, C]) *Config[S, E, C] {
	cfg := &Config[S, E, C]{
		initial:         spec.Initial,
		states:          make(map[S]*StateDef[S, E, C], len(spec.States)),
		onAnyEntry:      append([]Action[S, E, C](nil), spec.OnAnyEntry...),
		onAnyExit:       append([]Action[S, E, C](nil), spec.OnAnyExit...),
		onAnyTransition: append([]Action[S, E, C](nil), spec.OnAnyTransition...),
		listeners:       append([]Listener[S, E, C](nil), spec.Listeners...),
		errorHandler:    spec.ErrorHandler,
	}
	for _, ss := range spec.States {
		if existing, ok := cfg.states[ss.State]; ok {
			existing.merge(ss)
			continue
		}
		cfg.states[ss.State] = newStateDef(ss)
		cfg.order = append(cfg.order, ss.State)
	}
	return cfg
}

// Initial returns the machine's initial state.
func (c *Config[S, E, C]) Initial() S { return c.initial }

// State returns the definition for s, or false if s is not configured.
func (c *Config[S, E, C]) State(s S) (*StateDef[S, E, C], bool) {
	d, ok := c.states[s]
	return d, ok
}

// States returns every configured state in declaration order. The slice is
// shared and must not be modified.
func (c *Config[S, E, C]) States() []S { return c.order }

// Len returns the number of configured states.
func (c *Config[S, E, C]) Len() int { return len(c.states) }

// OnAnyEntry returns the global entry actions in declaration order.
func (c *Config[S, E, C]) OnAnyEntry() []Action[S, E, C] { return c.onAnyEntry }

// OnAnyExit returns the global exit actions in declaration order.
func (c *Config[S, E, C]) OnAnyExit() []Action[S, E, C] { return c.onAnyExit }

// OnAnyTransition returns the global transition actions in declaration
// order.
func (c *Config[S, E, C]) OnAnyTransition() []Action[S, E, C] { return c.onAnyTransition }

// Listeners returns the registered listeners in registration order.
func (c *Config[S, E, C]) Listeners() []Listener[S, E, C] { return c.listeners }

// ErrorHandler returns the configured error handler, or nil.
func (c *Config[S, E, C]) ErrorHandler() ErrorHandler[S, E, C] { return c.errorHandler }
