package fsm

// TransitionInfo is one edge of the machine graph as reported by Info.
// Ignore and internal rules do not move the machine and are not edges;
// reentry rules appear as self-edges and auto-transitions as edges without
// an event.
type TransitionInfo[S comparable, E comparable] struct {
	From     S        `json:"from"`
	To       S        `json:"to"`
	Event    E        `json:"event"`
	HasEvent bool     `json:"has_event"`
	Kind     RuleKind `json:"-"`
	Guarded  bool     `json:"guarded,omitempty"`
}

// Info is a read-only introspection snapshot of a configuration, the input
// to diagram renderers, the describe report and the HTTP and MCP adapters.
type Info[S comparable, E comparable] struct {
	Initial     S                      `json:"initial"`
	States      []S                    `json:"states"`
	FinalStates []S                    `json:"final_states,omitempty"`
	Events      []E                    `json:"events"`
	Transitions []TransitionInfo[S, E] `json:"transitions"`
}

// NewInfo derives the introspection snapshot from a built configuration.
// States keep declaration order; events keep order of first appearance.
func NewInfo[S comparable, E comparable, C any](cfg *Config[S, E, C]) Info[S, E] {
	info := Info[S, E]{
		Initial: cfg.Initial(),
		States:  append([]S(nil), cfg.States()...),
	}
	seen := make(map[E]struct{})
	for _, s := range cfg.States() {
		def, ok := cfg.State(s)
		if !ok {
			continue
		}
		if def.Final() {
			info.FinalStates = append(info.FinalStates, s)
		}
		for _, r := range def.Rules() {
			if r.HasEvent {
				if _, dup := seen[r.Event]; !dup {
					seen[r.Event] = struct{}{}
					info.Events = append(info.Events, r.Event)
				}
			}
			switch r.Kind {
			case KindPermit, KindAutoTransition:
				info.Transitions = append(info.Transitions, TransitionInfo[S, E]{
					From: s, To: r.Target, Event: r.Event, HasEvent: r.HasEvent,
					Kind: r.Kind, Guarded: r.Guarded(),
				})
			case KindPermitReentry:
				info.Transitions = append(info.Transitions, TransitionInfo[S, E]{
					From: s, To: s, Event: r.Event, HasEvent: true,
					Kind: r.Kind, Guarded: r.Guarded(),
				})
			}
		}
	}
	return info
}

// Final reports whether s is one of the snapshot's final states.
func (i Info[S, E]) Final(s S) bool {
	for _, f := range i.FinalStates {
		if f == s {
			return true
		}
	}
	return false
}
