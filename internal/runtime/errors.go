package runtime

import "fmt"

// panicError wraps a recovered panic value so it can travel the normal
// error path into the configured error handler.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%v", e.value)
}

// recoveredError normalizes a recover() value into an error. Panics raised
// with an error keep their identity so errors.Is and errors.As still work
// on the cause handed to the error handler.
func recoveredError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &panicError{value: v}
}

// chaseOverflowError reports an auto-transition chain that exhausted the
// engine's depth budget. In practice this means the auto-transition rules
// form a cycle, which the validator can detect ahead of time.
type chaseOverflowError[S comparable] struct {
	State S
	Limit int
}

func (e *chaseOverflowError[S]) Error() string {
	return fmt.Sprintf("auto-transition chain exceeded %d steps at state '%v'", e.Limit, e.State)
}
