/*
Package detent is a generic finite-state-machine runtime: a transition
dispatch engine plus a static configuration validator.

A machine is configured once, up front, as an immutable set of states and
transition rules. The engine itself is stateless: every dispatch takes the
current state as an argument and returns the next one, so a single machine
instance can serve any number of entities concurrently while the caller
decides where state lives.

# Concept

Each state owns a list of rules. A rule reacts to an event by moving to
another state (permit), re-entering the current one (reentry), swallowing
the event (ignore), running a side effect in place (internal), or firing
spontaneously on entry (auto transition). Rules can carry guards over the
caller's context; the first rule whose guard passes wins, in declaration
order. Failures never escape as panics: every dispatch returns a result
value that says what happened and why.

# Usage

Build a configuration with the dsl package, validate it at startup, then
fire events:

	package main

	import (
		"fmt"
		"log"

		"github.com/detentlabs/detent"
		"github.com/detentlabs/detent/pkg/dsl"
	)

	type ctx struct{ Paid bool }

	func main() {
		b := dsl.New[string, string, *ctx]("CREATED")
		b.Configure("CREATED").
			Permit("pay", "PAID").
			Permit("cancel", "CANCELLED")
		b.Configure("PAID").
			Permit("ship", "SHIPPED")
		b.Configure("SHIPPED").Final()
		b.Configure("CANCELLED").Final()

		cfg, err := b.Build()
		if err != nil {
			log.Fatal(err)
		}

		machine := detent.New(cfg)
		if v := machine.Validate(); !v.OK() {
			log.Fatal(v.Errors)
		}

		state := machine.Fire("CREATED", "pay", &ctx{Paid: true})
		fmt.Println(state) // PAID
	}

Machines can equally be loaded from YAML definitions (pkg/adapters/yamldef)
and driven through the CLI, the HTTP adapter or the MCP adapter.
*/
package detent
