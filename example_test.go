package detent_test

import (
	"fmt"
	"log"

	"github.com/detentlabs/detent"
	"github.com/detentlabs/detent/pkg/dsl"
	"github.com/detentlabs/detent/pkg/fsm"
)

// Example demonstrates the stateless dispatch loop: the machine is built
// once and the caller threads the current state through every call.
func Example() {
	type order struct {
		Amount int
	}

	b := dsl.New[string, string, *order]("CREATED")
	b.Configure("CREATED").
		PermitIf("pay", "PAID", func(_ fsm.Transition[string, string], o *order) bool {
			return o.Amount > 0
		}).
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

	o := &order{Amount: 2500}
	state := machine.Fire("CREATED", "pay", o)
	state = machine.Fire(state, "ship", o)

	fmt.Println(state)
	fmt.Println(machine.IsFinalState(state))
	// Output:
	// SHIPPED
	// true
}

// ExampleMachine_FireWithResult shows the full dispatch result, including
// the debug payload failures carry.
func ExampleMachine_FireWithResult() {
	b := dsl.New[string, string, any]("IDLE")
	b.Configure("IDLE").
		Permit("start", "RUNNING").
		Ignore("stop")
	b.Configure("RUNNING").
		Permit("stop", "IDLE")

	cfg, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	machine := detent.New(cfg)

	res := machine.FireWithResult("IDLE", "stop", nil)
	fmt.Println(res.Outcome, "-", res.Reason)

	res = machine.FireWithResult("IDLE", "reset", nil)
	fmt.Println(res.Outcome, "-", res.Debug.Code)
	// Output:
	// ignored - Event ignored
	// failed - NO_TRANSITION
}
