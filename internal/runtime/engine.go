package runtime

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/detentlabs/detent/internal/logging"
	"github.com/detentlabs/detent/pkg/fsm"
)

// maxAutoChase bounds auto-transition recursion so a cyclic auto-transition
// configuration fails loudly instead of overflowing the call stack.
// Legitimate chains stay far below this.
const maxAutoChase = 64

// defaultResultCacheCap is the capacity of the success/ignored result
// memoization cache.
const defaultResultCacheCap = 256

// Engine is the transition dispatcher. It holds an immutable configuration
// and is safe for concurrent use: every call runs entirely on the caller's
// goroutine and the only internal mutable state is the bounded result
// cache and the per-state rule indexes, both self-synchronized.
type Engine[S comparable, E comparable, C any] struct {
	cfg     *fsm.Config[S, E, C]
	logger  *slog.Logger
	results *resultCache[S]
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	cacheCap int
}

// WithLogger sets the structured logger. Without it the engine is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithResultCacheCap overrides the result memoization capacity. Zero
// disables caching entirely.
func WithResultCacheCap(n int) Option {
	return func(s *settings) { s.cacheCap = n }
}

// New creates an engine over cfg. The configuration must be fully built
// before the first dispatch; the engine never mutates it.
func New[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C], opts ...Option) *Engine[S, E, C] {
	s := settings{cacheCap: defaultResultCacheCap}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return &Engine[S, E, C]{
		cfg:     cfg,
		logger:  s.logger,
		results: newResultCache[S](s.cacheCap),
	}
}

// Fire dispatches event in state and returns only the resulting state.
// It never panics: on failure the returned state is the one the full
// result would report, usually the unchanged input state.
func (e *Engine[S, E, C]) Fire(state S, event E, ctx C) S {
	return e.FireWithResult(state, event, ctx).State
}

// FireWithResult dispatches event in state and reports the full outcome.
// All failures come back as values; no guard, action, listener or handler
// panic escapes this call.
func (e *Engine[S, E, C]) FireWithResult(state S, event E, ctx C) (res fsm.Result[S]) {
	defer func() {
		if r := recover(); r != nil {
			res = e.dispatchFailed(state, event, ctx, recoveredError(r))
		}
	}()

	def, ok := e.cfg.State(state)
	if !ok {
		e.logger.Debug("dispatch rejected", "state", state, "event", event, "reason", "unknown state")
		return fsm.FailedResult(state,
			fmt.Sprintf("Unknown state: %v", state),
			fsm.CodeUnknownState,
			"configured states: "+joinValues(e.cfg.States()))
	}
	if def.Final() {
		e.logger.Debug("dispatch rejected", "state", state, "event", event, "reason", "final state")
		return fsm.FailedResult(state,
			fmt.Sprintf("Cannot transition from final state: %v", state),
			fsm.CodeFinalState,
			"final states accept no events")
	}

	rule, ok := e.selectRule(def, state, event, ctx)
	if !ok {
		e.logger.Debug("dispatch rejected", "state", state, "event", event, "reason", "no matching rule")
		return fsm.FailedResult(state,
			fmt.Sprintf("No transition configured for event '%v' in state '%v'", event, state),
			fsm.CodeNoTransition,
			"registered events: "+joinValues(def.Events()))
	}

	switch rule.Kind {
	case fsm.KindIgnore:
		e.logger.Debug("event ignored", "state", state, "event", event)
		return e.results.intern(fsm.IgnoredResult(state))

	case fsm.KindInternal:
		if err := e.runInternal(rule, state, event, ctx); err != nil {
			return e.dispatchFailed(state, event, ctx, err)
		}
		return e.results.intern(fsm.TransitionedResult(state))

	case fsm.KindPermit, fsm.KindPermitReentry, fsm.KindAutoTransition:
		t := fsm.Transition[S, E]{From: state, To: rule.Target, Event: event, HasEvent: rule.HasEvent}
		final, err := e.runTransition(t, rule.Kind == fsm.KindPermitReentry, ctx, 0)
		if err != nil {
			var overflow *chaseOverflowError[S]
			if errors.As(err, &overflow) {
				return e.chaseOverflow(overflow)
			}
			return e.dispatchFailed(state, event, ctx, err)
		}
		e.logger.Debug("transitioned", "from", state, "to", final, "event", event)
		return e.results.intern(fsm.TransitionedResult(final))

	default:
		panic(fmt.Sprintf("runtime: unknown rule kind %v", rule.Kind))
	}
}

// CanFire reports whether some rule would accept event in state. It runs
// rule selection only: no actions, no listeners, no state change. A guard
// panic during the probe counts as not firable.
func (e *Engine[S, E, C]) CanFire(state S, event E, ctx C) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("guard panicked during probe", "state", state, "event", event, "err", r)
			ok = false
		}
	}()

	def, found := e.cfg.State(state)
	if !found || def.Final() {
		return false
	}
	_, ok = e.selectRule(def, state, event, ctx)
	return ok
}

// IsFinalState reports whether state is configured and final.
func (e *Engine[S, E, C]) IsFinalState(state S) bool {
	def, ok := e.cfg.State(state)
	return ok && def.Final()
}

// Info returns an introspection snapshot of the configuration.
func (e *Engine[S, E, C]) Info() fsm.Info[S, E] {
	return fsm.NewInfo(e.cfg)
}

// Config exposes the underlying configuration for validation and
// presentation layers.
func (e *Engine[S, E, C]) Config() *fsm.Config[S, E, C] {
	return e.cfg
}
