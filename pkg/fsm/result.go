package fsm

// Outcome classifies what a single dispatch did.
type Outcome uint8

const (
	// Transitioned means a rule matched and the machine moved (or, for
	// internal transitions, ran its action in place).
	Transitioned Outcome = iota

	// Ignored means an ignore rule consumed the event without effect.
	Ignored

	// Failed means no rule matched, a pre-check rejected the dispatch, or
	// an error surfaced during the transition protocol.
	Failed
)

// String returns the lowercase outcome name used in logs and wire payloads.
func (o Outcome) String() string {
	switch o {
	case Transitioned:
		return "transitioned"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Debug codes attached to failed results. The code names the failure class;
// Detail carries free-form context such as the configured states or the
// events a state actually accepts.
const (
	CodeUnknownState    = "UNKNOWN_STATE"
	CodeFinalState      = "FINAL_STATE"
	CodeNoTransition    = "NO_TRANSITION"
	CodeTransitionError = "EXCEPTION_DURING_TRANSITION"
	CodeErrorHandler    = "ERROR_IN_ERROR_HANDLER"
	CodeUnhandledError  = "UNHANDLED_ERROR"
	CodeAutoChaseBudget = "AUTO_CHASE_OVERFLOW"
)

// Debug is the diagnostic payload of a failed result.
type Debug struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// Result reports one dispatch. State is the state the caller should
// consider current afterwards: the target for successful transitions, the
// unchanged source for ignored and most failed dispatches, or the recovery
// state chosen by an error handler.
type Result[S comparable] struct {
	State   S       `json:"state"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason"`
	Debug   *Debug  `json:"debug,omitempty"`
}

// Transitioned reports whether the dispatch changed or re-entered a state.
func (r Result[S]) Transitioned() bool { return r.Outcome == Transitioned }

// Ignored reports whether the event was consumed without effect.
func (r Result[S]) Ignored() bool { return r.Outcome == Ignored }

// Failed reports whether the dispatch failed.
func (r Result[S]) Failed() bool { return r.Outcome == Failed }

// TransitionedResult builds the success result for a dispatch that ended in
// state.
func TransitionedResult[S comparable](state S) Result[S] {
	return Result[S]{State: state, Outcome: Transitioned, Reason: "Transitioned"}
}

// IgnoredResult builds the result for an event consumed by an ignore rule.
func IgnoredResult[S comparable](state S) Result[S] {
	return Result[S]{State: state, Outcome: Ignored, Reason: "Event ignored"}
}

// FailedResult builds a failed result carrying a debug payload.
func FailedResult[S comparable](state S, reason, code, detail string) Result[S] {
	return Result[S]{
		State:   state,
		Outcome: Failed,
		Reason:  reason,
		Debug:   &Debug{Code: code, Detail: detail},
	}
}
