package fsm

// RuleKind identifies the reaction a transition rule encodes. The set is
// closed: the engine dispatches over it exhaustively and adding a kind means
// extending that single dispatch site.
type RuleKind uint8

const (
	// KindPermit moves the machine to Target and runs the full
	// exit/transition/entry protocol.
	KindPermit RuleKind = iota

	// KindPermitReentry re-enters the owning state, forcing a full
	// exit-then-entry cycle even though source and target are equal.
	KindPermitReentry

	// KindIgnore consumes the event without any state change, actions or
	// transition listeners.
	KindIgnore

	// KindInternal runs Action without leaving the state. Entry and exit
	// actions do not fire; transition actions and listeners do.
	KindInternal

	// KindAutoTransition fires on state entry rather than on an event,
	// chaining the machine onward to Target.
	KindAutoTransition
)

// String returns the lowercase name used in logs, diagrams and scenario
// output.
func (k RuleKind) String() string {
	switch k {
	case KindPermit:
		return "permit"
	case KindPermitReentry:
		return "permit-reentry"
	case KindIgnore:
		return "ignore"
	case KindInternal:
		return "internal"
	case KindAutoTransition:
		return "auto"
	default:
		return "unknown"
	}
}

// Rule is a single transition rule owned by a state. Rules are value types
// and must not be mutated after the owning Config is built.
//
// Field usage varies by kind:
//
//   - Event/HasEvent: set for all kinds except KindAutoTransition.
//   - Target: the destination for KindPermit and KindAutoTransition; equal to
//     the owning state for the other kinds.
//   - Guard: optional for every kind; a nil Guard means the rule always
//     applies.
//   - Action: set only for KindInternal.
type Rule[S comparable, E comparable, C any] struct {
	Kind     RuleKind
	Event    E
	HasEvent bool
	Target   S
	Guard    Guard[S, E, C]
	Action   Action[S, E, C]
}

// Applies reports whether the rule's guard admits the transition t. A rule
// without a guard always applies.
func (r Rule[S, E, C]) Applies(t Transition[S, E], ctx C) bool {
	if r.Guard == nil {
		return true
	}
	return r.Guard(t, ctx)
}

// Guarded reports whether the rule carries a guard. Unguarded rules are the
// ones the validator checks for per-event uniqueness.
func (r Rule[S, E, C]) Guarded() bool {
	return r.Guard != nil
}
