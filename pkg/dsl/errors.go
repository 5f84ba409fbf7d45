package dsl

import "errors"

// ErrConsumed is returned by Build when the builder has already produced a
// configuration. Drafts are single-use; build a new Builder instead.
var ErrConsumed = errors.New("dsl: builder already consumed by Build")
