package dsl

import "github.com/detentlabs/detent/pkg/fsm"

// StateBuilder provides a fluent API for configuring one state. Rules are
// kept in declaration order; during dispatch the first matching rule whose
// guard passes wins.
type StateBuilder[S comparable, E comparable, C any] struct {
	builder *Builder[S, E, C]
	spec    fsm.StateSpec[S, E, C]
}

// Permit moves the machine to target when event fires.
func (sb *StateBuilder[S, E, C]) Permit(event E, target S) *StateBuilder[S, E, C] {
	return sb.PermitIf(event, target, nil)
}

// PermitIf moves the machine to target when event fires and guard passes.
// A nil guard always passes.
func (sb *StateBuilder[S, E, C]) PermitIf(event E, target S, guard fsm.Guard[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.Rules = append(sb.spec.Rules, fsm.Rule[S, E, C]{
		Kind:     fsm.KindPermit,
		Event:    event,
		HasEvent: true,
		Target:   target,
		Guard:    guard,
	})
	return sb
}

// PermitReentry re-enters the state when event fires, running the full
// exit-then-entry cycle even though the state does not change.
func (sb *StateBuilder[S, E, C]) PermitReentry(event E) *StateBuilder[S, E, C] {
	return sb.PermitReentryIf(event, nil)
}

// PermitReentryIf is PermitReentry with a guard.
func (sb *StateBuilder[S, E, C]) PermitReentryIf(event E, guard fsm.Guard[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.Rules = append(sb.spec.Rules, fsm.Rule[S, E, C]{
		Kind:     fsm.KindPermitReentry,
		Event:    event,
		HasEvent: true,
		Target:   sb.spec.State,
		Guard:    guard,
	})
	return sb
}

// Ignore consumes event without any state change or side effect.
func (sb *StateBuilder[S, E, C]) Ignore(event E) *StateBuilder[S, E, C] {
	return sb.IgnoreIf(event, nil)
}

// IgnoreIf is Ignore with a guard.
func (sb *StateBuilder[S, E, C]) IgnoreIf(event E, guard fsm.Guard[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.Rules = append(sb.spec.Rules, fsm.Rule[S, E, C]{
		Kind:     fsm.KindIgnore,
		Event:    event,
		HasEvent: true,
		Target:   sb.spec.State,
		Guard:    guard,
	})
	return sb
}

// Internal runs action on event without leaving the state. Entry and exit
// actions do not fire.
func (sb *StateBuilder[S, E, C]) Internal(event E, action fsm.Action[S, E, C]) *StateBuilder[S, E, C] {
	return sb.InternalIf(event, action, nil)
}

// InternalIf is Internal with a guard.
func (sb *StateBuilder[S, E, C]) InternalIf(event E, action fsm.Action[S, E, C], guard fsm.Guard[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.Rules = append(sb.spec.Rules, fsm.Rule[S, E, C]{
		Kind:     fsm.KindInternal,
		Event:    event,
		HasEvent: true,
		Target:   sb.spec.State,
		Guard:    guard,
		Action:   action,
	})
	return sb
}

// AutoTransition chains the machine to target immediately after this state
// is entered, without waiting for an event.
func (sb *StateBuilder[S, E, C]) AutoTransition(target S) *StateBuilder[S, E, C] {
	return sb.AutoTransitionIf(target, nil)
}

// AutoTransitionIf is AutoTransition with a guard, evaluated on entry.
func (sb *StateBuilder[S, E, C]) AutoTransitionIf(target S, guard fsm.Guard[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.Rules = append(sb.spec.Rules, fsm.Rule[S, E, C]{
		Kind:   fsm.KindAutoTransition,
		Target: target,
		Guard:  guard,
	})
	return sb
}

// OnEntry registers an entry action for the state.
func (sb *StateBuilder[S, E, C]) OnEntry(action fsm.Action[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.OnEntry = append(sb.spec.OnEntry, action)
	return sb
}

// OnExit registers an exit action for the state.
func (sb *StateBuilder[S, E, C]) OnExit(action fsm.Action[S, E, C]) *StateBuilder[S, E, C] {
	sb.spec.OnExit = append(sb.spec.OnExit, action)
	return sb
}

// Final marks the state as terminal. Final states accept no events; the
// validator rejects configurations that give them rules.
func (sb *StateBuilder[S, E, C]) Final() *StateBuilder[S, E, C] {
	sb.spec.Final = true
	return sb
}

// Configure switches to another state's builder, so whole machines can be
// declared in one chain.
func (sb *StateBuilder[S, E, C]) Configure(state S) *StateBuilder[S, E, C] {
	return sb.builder.Configure(state)
}

// Build consumes the parent builder. Exposed for chained declarations.
func (sb *StateBuilder[S, E, C]) Build() (*fsm.Config[S, E, C], error) {
	return sb.builder.Build()
}
