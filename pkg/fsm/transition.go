package fsm

// Transition carries the metadata of one state change as seen by guards,
// actions and listeners. For auto-transitions HasEvent is false and Event
// holds the zero value of E.
type Transition[S comparable, E comparable] struct {
	From     S
	To       S
	Event    E
	HasEvent bool
}

// Reentry reports whether the transition re-enters its source state.
func (t Transition[S, E]) Reentry() bool {
	return t.From == t.To
}
