/*
Package dsl provides a fluent, type-safe builder for constructing Detent
machine configurations in Go code.

It implements the mutable half of the two-phase configuration model: the
builder accumulates states, rules and hooks in declaration order, and Build
consumes the draft into an immutable fsm.Config that is safe for concurrent
dispatch. A builder can be consumed exactly once.

Example usage:

	package main

	import (
		"github.com/detentlabs/detent"
		"github.com/detentlabs/detent/pkg/dsl"
		"github.com/detentlabs/detent/pkg/fsm"
	)

	type Order struct{ Balance int }

	func main() {
		b := dsl.New[string, string, *Order]("CREATED")

		b.Configure("CREATED").
			PermitIf("PAY", "PAID", func(t fsm.Transition[string, string], o *Order) bool {
				return o.Balance > 0
			}).
			Permit("CANCEL", "CANCELLED")

		b.Configure("PAID").
			Permit("SHIP", "SHIPPED").
			Ignore("PAY")

		b.Configure("SHIPPED").
			Permit("DELIVER", "DELIVERED")

		b.Configure("DELIVERED").Final()
		b.Configure("CANCELLED").Final()

		cfg, err := b.Build()
		if err != nil {
			// only fails when the builder was already consumed
		}
		machine := detent.New(cfg)
		_ = machine
	}
*/
package dsl
