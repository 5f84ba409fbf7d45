package fsm

// Guard decides whether a rule applies to the transition it would produce.
// Guards must be side-effect free; the engine may evaluate them during
// CanFire probes as well as during dispatch.
type Guard[S comparable, E comparable, C any] func(t Transition[S, E], ctx C) bool

// Action is a side-effecting callback invoked during the transition
// protocol: state entry and exit actions, internal transition actions and
// the global hooks all share this shape. A non-nil error aborts the dispatch
// and is routed to the configured error handler.
type Action[S comparable, E comparable, C any] func(t Transition[S, E], ctx C) error

// ErrorHandler recovers from an error raised while dispatching event in
// state. It returns the state the machine should be considered in after
// recovery. Returning a non-nil error marks the recovery itself as failed
// and the dispatch reports the original state.
type ErrorHandler[S comparable, E comparable, C any] func(state S, event E, ctx C, cause error) (S, error)

// Listener observes dispatch without influencing it. Every field is
// optional. Listener callbacks must not fail: the engine suppresses and logs
// any panic they raise, and a listener cannot abort or reorder a transition.
type Listener[S comparable, E comparable, C any] struct {
	// OnStateEntry fires after a state's entry actions have run.
	OnStateEntry func(state S, ctx C)

	// OnStateExit fires before a state's exit actions run.
	OnStateExit func(state S, ctx C)

	// OnTransition fires after the transition actions, before entry
	// actions of the target state.
	OnTransition func(t Transition[S, E], ctx C)

	// OnDispatchError fires when a dispatch fails, before the error
	// handler (if any) runs.
	OnDispatchError func(state S, event E, ctx C, err error)
}
