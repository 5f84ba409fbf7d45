package fsm

import (
	"sync"
	"sync/atomic"
)

// StateSpec is the mutable draft of a single state, assembled by the builder
// and consumed by NewConfig. Rule and action order is declaration order and
// is preserved into the built form.
type StateSpec[S comparable, E comparable, C any] struct {
	State   S
	Final   bool
	Rules   []Rule[S, E, C]
	OnEntry []Action[S, E, C]
	OnExit  []Action[S, E, C]
}

// StateDef is the built, read-only form of one state. It owns the state's
// rules in declaration order plus a lazily rebuilt per-event index so that
// dispatch does not scan the full rule list on every call.
type StateDef[S comparable, E comparable, C any] struct {
	state S
	final bool
	rules []Rule[S, E, C]
	entry []Action[S, E, C]
	exit  []Action[S, E, C]

	// The index is rebuilt under mu and published atomically; a nil
	// pointer marks it dirty. Readers never observe a partial index.
	mu  sync.Mutex
	idx atomic.Pointer[ruleIndex[S, E, C]]
}

type ruleIndex[S comparable, E comparable, C any] struct {
	byEvent map[E][]Rule[S, E, C]
	auto    []Rule[S, E, C]
	events  []E
}

func newStateDef[S comparable, E comparable, C any](spec StateSpec[S, E, C]) *StateDef[S, E, C] {
	d := &StateDef[S, E, C]{
		state: spec.State,
		final: spec.Final,
		rules: append([]Rule[S, E, C](nil), spec.Rules...),
		entry: append([]Action[S, E, C](nil), spec.OnEntry...),
		exit:  append([]Action[S, E, C](nil), spec.OnExit...),
	}
	return d
}

// merge folds a second spec for the same state into the definition. Used
// when a draft configures the same state more than once; rules and actions
// append in declaration order.
func (d *StateDef[S, E, C]) merge(spec StateSpec[S, E, C]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rules = append(d.rules, spec.Rules...)
	d.entry = append(d.entry, spec.OnEntry...)
	d.exit = append(d.exit, spec.OnExit...)
	d.final = d.final || spec.Final
	d.idx.Store(nil)
}

// State returns the identifier this definition describes.
func (d *StateDef[S, E, C]) State() S { return d.state }

// Final reports whether the state is terminal. Final states accept no
// events and own no rules.
func (d *StateDef[S, E, C]) Final() bool { return d.final }

// Rules returns the state's rules in declaration order. The slice is shared
// and must not be modified.
func (d *StateDef[S, E, C]) Rules() []Rule[S, E, C] { return d.rules }

// RulesFor returns the rules reacting to event, in declaration order.
func (d *StateDef[S, E, C]) RulesFor(event E) []Rule[S, E, C] {
	return d.index().byEvent[event]
}

// AutoRules returns the state's auto-transition rules in declaration order.
func (d *StateDef[S, E, C]) AutoRules() []Rule[S, E, C] {
	return d.index().auto
}

// Events returns the distinct events the state reacts to, in order of first
// declaration.
func (d *StateDef[S, E, C]) Events() []E {
	return d.index().events
}

// EntryActions returns the state's own entry actions in declaration order.
func (d *StateDef[S, E, C]) EntryActions() []Action[S, E, C] { return d.entry }

// ExitActions returns the state's own exit actions in declaration order.
func (d *StateDef[S, E, C]) ExitActions() []Action[S, E, C] { return d.exit }

// index returns the current event index, rebuilding it if a merge marked it
// dirty. Double-checked so concurrent readers rebuild at most once.
func (d *StateDef[S, E, C]) index() *ruleIndex[S, E, C] {
	if p := d.idx.Load(); p != nil {
		return p
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if p := d.idx.Load(); p != nil {
		return p
	}
	p := buildRuleIndex(d.rules)
	d.idx.Store(p)
	return p
}

func buildRuleIndex[S comparable, E comparable, C any](rules []Rule[S, E, C]) *ruleIndex[S, E, C] {
	idx := &ruleIndex[S, E, C]{
		byEvent: make(map[E][]Rule[S, E, C]),
	}
	for _, r := range rules {
		if r.Kind == KindAutoTransition {
			idx.auto = append(idx.auto, r)
			continue
		}
		if _, seen := idx.byEvent[r.Event]; !seen {
			idx.events = append(idx.events, r.Event)
		}
		idx.byEvent[r.Event] = append(idx.byEvent[r.Event], r)
	}
	return idx
}
