package dsl

import (
	"github.com/detentlabs/detent/pkg/fsm"
)

// Builder manages machine construction. It is the mutable first phase of the
// two-phase configuration model: every Configure and hook call accumulates
// into a draft, and Build consumes the draft into an immutable fsm.Config.
// A Builder is not safe for concurrent use.
type Builder[S comparable, E comparable, C any] struct {
	initial S
	order   []S
	states  map[S]*StateBuilder[S, E, C]

	onAnyEntry      []fsm.Action[S, E, C]
	onAnyExit       []fsm.Action[S, E, C]
	onAnyTransition []fsm.Action[S, E, C]
	listeners       []fsm.Listener[S, E, C]
	errorHandler    fsm.ErrorHandler[S, E, C]

	consumed bool
}

// New creates a builder for a machine starting in initial.
func New[S comparable, E comparable, C any](initial S) *Builder[S, E, C] {
	return &Builder[S, E, C]{
		initial: initial,
		states:  make(map[S]*StateBuilder[S, E, C]),
	}
}

// Configure returns the builder for state, creating it on first use.
// Configuring the same state again returns the existing builder, so rules
// keep accumulating in declaration order.
func (b *Builder[S, E, C]) Configure(state S) *StateBuilder[S, E, C] {
	if sb, ok := b.states[state]; ok {
		return sb
	}
	sb := &StateBuilder[S, E, C]{
		builder: b,
		spec:    fsm.StateSpec[S, E, C]{State: state},
	}
	b.states[state] = sb
	b.order = append(b.order, state)
	return sb
}

// OnAnyEntry registers an action that runs whenever any state is entered,
// before that state's own entry actions.
func (b *Builder[S, E, C]) OnAnyEntry(action fsm.Action[S, E, C]) *Builder[S, E, C] {
	b.onAnyEntry = append(b.onAnyEntry, action)
	return b
}

// OnAnyExit registers an action that runs whenever any state is exited,
// before that state's own exit actions.
func (b *Builder[S, E, C]) OnAnyExit(action fsm.Action[S, E, C]) *Builder[S, E, C] {
	b.onAnyExit = append(b.onAnyExit, action)
	return b
}

// OnAnyTransition registers an action that runs on every transition,
// between the exit and entry phases.
func (b *Builder[S, E, C]) OnAnyTransition(action fsm.Action[S, E, C]) *Builder[S, E, C] {
	b.onAnyTransition = append(b.onAnyTransition, action)
	return b
}

// Listen registers a listener. Listeners observe dispatch in registration
// order and can never abort it.
func (b *Builder[S, E, C]) Listen(l fsm.Listener[S, E, C]) *Builder[S, E, C] {
	b.listeners = append(b.listeners, l)
	return b
}

// OnError installs the machine's error handler. Only one handler is kept;
// a later call replaces the earlier one.
func (b *Builder[S, E, C]) OnError(h fsm.ErrorHandler[S, E, C]) *Builder[S, E, C] {
	b.errorHandler = h
	return b
}

// Build consumes the draft into an immutable configuration. The builder
// cannot be reused afterwards; a second call returns ErrConsumed.
func (b *Builder[S, E, C]) Build() (*fsm.Config[S, E, C], error) {
	if b.consumed {
		return nil, ErrConsumed
	}
	b.consumed = true

	spec := fsm.ConfigSpec[S, E, C]{
		Initial:         b.initial,
		States:          make([]fsm.StateSpec[S, E, C], 0, len(b.order)),
		OnAnyEntry:      b.onAnyEntry,
		OnAnyExit:       b.onAnyExit,
		OnAnyTransition: b.onAnyTransition,
		Listeners:       b.listeners,
		ErrorHandler:    b.errorHandler,
	}
	for _, s := range b.order {
		spec.States = append(spec.States, b.states[s].spec)
	}
	return fsm.NewConfig(spec), nil
}
