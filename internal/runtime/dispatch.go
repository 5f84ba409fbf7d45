package runtime

import (
	"fmt"
	"strings"

	"github.com/detentlabs/detent/pkg/fsm"
)

// selectRule scans the state's rules for event in declaration order and
// picks the first whose guard is absent or passes. First match wins: more
// specific conditions must be declared before general ones.
func (e *Engine[S, E, C]) selectRule(def *fsm.StateDef[S, E, C], state S, event E, ctx C) (fsm.Rule[S, E, C], bool) {
	for _, r := range def.RulesFor(event) {
		t := fsm.Transition[S, E]{From: state, To: r.Target, Event: event, HasEvent: true}
		if r.Applies(t, ctx) {
			return r, true
		}
	}
	var none fsm.Rule[S, E, C]
	return none, false
}

// runInternal executes an internal rule: the rule's action and the
// transition notifications fire, entry and exit phases stay untouched.
func (e *Engine[S, E, C]) runInternal(rule fsm.Rule[S, E, C], state S, event E, ctx C) error {
	t := fsm.Transition[S, E]{From: state, To: state, Event: event, HasEvent: true}
	if rule.Action != nil {
		if err := rule.Action(t, ctx); err != nil {
			return err
		}
	}
	if err := e.runActions(e.cfg.OnAnyTransition(), t, ctx); err != nil {
		return err
	}
	e.notifyTransition(t, ctx)
	e.logger.Debug("internal transition", "state", state, "event", event)
	return nil
}

// runTransition executes the exit/transition/entry protocol for t, then
// chases auto-transitions from the target. Reentrant transitions run the
// full cycle even though source and target are equal. The returned state
// is only meaningful when err is nil.
func (e *Engine[S, E, C]) runTransition(t fsm.Transition[S, E], reentry bool, ctx C, depth int) (S, error) {
	crossing := t.From != t.To || reentry

	// 1. Exit listeners, best effort.
	e.notifyExit(t.From, ctx)

	// 2. Exit actions, global before state-local.
	if crossing {
		if err := e.runActions(e.cfg.OnAnyExit(), t, ctx); err != nil {
			return t.From, err
		}
		if def, ok := e.cfg.State(t.From); ok {
			if err := e.runActions(def.ExitActions(), t, ctx); err != nil {
				return t.From, err
			}
		}
	}

	// 3. Transition actions, then transition listeners.
	if err := e.runActions(e.cfg.OnAnyTransition(), t, ctx); err != nil {
		return t.From, err
	}
	e.notifyTransition(t, ctx)

	// 4. Entry actions, global before state-local. An unconfigured target
	// has no actions and no auto rules; the validator reports it, dispatch
	// stays graceful.
	target, known := e.cfg.State(t.To)
	if crossing {
		if err := e.runActions(e.cfg.OnAnyEntry(), t, ctx); err != nil {
			return t.From, err
		}
		if known {
			if err := e.runActions(target.EntryActions(), t, ctx); err != nil {
				return t.From, err
			}
		}
	}

	// 5. Entry listeners, best effort.
	e.notifyEntry(t.To, ctx)

	// 6. Auto-transition chase: first matching auto rule recurses onward.
	if !known || target.Final() {
		return t.To, nil
	}
	for _, r := range target.AutoRules() {
		next := fsm.Transition[S, E]{From: t.To, To: r.Target}
		if !r.Applies(next, ctx) {
			continue
		}
		if depth+1 > maxAutoChase {
			return t.To, &chaseOverflowError[S]{State: t.To, Limit: maxAutoChase}
		}
		e.logger.Debug("auto transition", "from", t.To, "to", r.Target, "depth", depth+1)
		return e.runTransition(next, false, ctx, depth+1)
	}
	return t.To, nil
}

func (e *Engine[S, E, C]) runActions(actions []fsm.Action[S, E, C], t fsm.Transition[S, E], ctx C) error {
	for _, a := range actions {
		if err := a(t, ctx); err != nil {
			return err
		}
	}
	return nil
}

// dispatchFailed routes a dispatch error through the error listeners and
// the configured handler. It never panics; a handler failure is itself
// recovered and reported distinctly.
func (e *Engine[S, E, C]) dispatchFailed(state S, event E, ctx C, cause error) fsm.Result[S] {
	e.logger.Error("dispatch failed", "state", state, "event", event, "err", cause)
	e.notifyDispatchError(state, event, ctx, cause)

	handler := e.cfg.ErrorHandler()
	if handler == nil {
		return fsm.FailedResult(state,
			"Unhandled error: "+cause.Error(),
			fsm.CodeUnhandledError,
			fmt.Sprintf("event '%v' in state '%v'", event, state))
	}

	recovered, herr := e.invokeHandler(handler, state, event, ctx, cause)
	if herr != nil {
		return fsm.FailedResult(state,
			"Error in error handler: "+herr.Error(),
			fsm.CodeErrorHandler,
			"original error: "+cause.Error())
	}
	e.logger.Debug("error handled", "state", state, "recovered_to", recovered)
	return fsm.FailedResult(recovered,
		"Error handled: "+cause.Error(),
		fsm.CodeTransitionError,
		fmt.Sprintf("handler recovered to state '%v'", recovered))
}

// invokeHandler calls the error handler with panic containment.
func (e *Engine[S, E, C]) invokeHandler(h fsm.ErrorHandler[S, E, C], state S, event E, ctx C, cause error) (s S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return h(state, event, ctx, cause)
}

// chaseOverflow builds the failure for an exhausted auto-transition budget.
// This is a configuration defect, not a user-code error, so the error
// handler is not consulted.
func (e *Engine[S, E, C]) chaseOverflow(err *chaseOverflowError[S]) fsm.Result[S] {
	e.logger.Error("auto-transition chase aborted", "state", err.State, "limit", err.Limit)
	return fsm.FailedResult(err.State,
		fmt.Sprintf("Auto-transition chain exceeded %d steps at state '%v'", err.Limit, err.State),
		fsm.CodeAutoChaseBudget,
		"auto-transition rules form a cycle or an overlong chain")
}

// notify shields dispatch from a misbehaving listener: a panic is logged
// and suppressed so the remaining listeners still run and the transition
// outcome is unaffected.
func (e *Engine[S, E, C]) notify(idx int, phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("listener panicked", "phase", phase, "listener", idx, "err", r)
		}
	}()
	fn()
}

func (e *Engine[S, E, C]) notifyEntry(state S, ctx C) {
	for i, l := range e.cfg.Listeners() {
		if l.OnStateEntry != nil {
			e.notify(i, "state entry", func() { l.OnStateEntry(state, ctx) })
		}
	}
}

func (e *Engine[S, E, C]) notifyExit(state S, ctx C) {
	for i, l := range e.cfg.Listeners() {
		if l.OnStateExit != nil {
			e.notify(i, "state exit", func() { l.OnStateExit(state, ctx) })
		}
	}
}

func (e *Engine[S, E, C]) notifyTransition(t fsm.Transition[S, E], ctx C) {
	for i, l := range e.cfg.Listeners() {
		if l.OnTransition != nil {
			e.notify(i, "transition", func() { l.OnTransition(t, ctx) })
		}
	}
}

func (e *Engine[S, E, C]) notifyDispatchError(state S, event E, ctx C, cause error) {
	for i, l := range e.cfg.Listeners() {
		if l.OnDispatchError != nil {
			e.notify(i, "dispatch error", func() { l.OnDispatchError(state, event, ctx, cause) })
		}
	}
}

// joinValues renders a value list for debug payloads.
func joinValues[T any](vals []T) string {
	if len(vals) == 0 {
		return "none"
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
