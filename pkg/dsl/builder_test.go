package dsl

import (
	"errors"
	"testing"

	"github.com/detentlabs/detent/pkg/fsm"
)

func TestBuilder_OrderFlow(t *testing.T) {
	// 1. Declare the machine using the DSL
	b := New[string, string, int]("CREATED")

	b.Configure("CREATED").
		Permit("PAY", "PAID").
		Permit("CANCEL", "CANCELLED")

	b.Configure("PAID").
		Permit("SHIP", "SHIPPED").
		Ignore("PAY")

	b.Configure("SHIPPED").
		Permit("DELIVER", "DELIVERED")

	b.Configure("DELIVERED").Final()
	b.Configure("CANCELLED").Final()

	// 2. Consume the draft
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// 3. Verify structure and declaration order
	wantStates := []string{"CREATED", "PAID", "SHIPPED", "DELIVERED", "CANCELLED"}
	got := cfg.States()
	if len(got) != len(wantStates) {
		t.Fatalf("Expected %d states, got %d", len(wantStates), len(got))
	}
	for i, s := range wantStates {
		if got[i] != s {
			t.Errorf("States()[%d] = %q, want %q", i, got[i], s)
		}
	}

	created, ok := cfg.State("CREATED")
	if !ok {
		t.Fatal("State('CREATED') not found")
	}
	rules := created.RulesFor("PAY")
	if len(rules) != 1 {
		t.Fatalf("Expected 1 PAY rule, got %d", len(rules))
	}
	if rules[0].Kind != fsm.KindPermit || rules[0].Target != "PAID" {
		t.Errorf("Unexpected PAY rule: kind=%v target=%q", rules[0].Kind, rules[0].Target)
	}

	delivered, _ := cfg.State("DELIVERED")
	if !delivered.Final() {
		t.Error("Expected DELIVERED to be final")
	}
}

func TestBuilder_RuleKinds(t *testing.T) {
	b := New[string, string, int]("IDLE")

	guard := func(tr fsm.Transition[string, string], ctx int) bool { return ctx > 0 }
	action := func(tr fsm.Transition[string, string], ctx int) error { return nil }

	b.Configure("IDLE").
		PermitIf("START", "RUNNING", guard).
		Internal("PING", action).
		Ignore("STOP")

	b.Configure("RUNNING").
		PermitReentry("RESTART").
		AutoTransitionIf("DONE", guard)

	b.Configure("DONE").Final()

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	idle, _ := cfg.State("IDLE")
	if r := idle.RulesFor("START"); len(r) != 1 || !r[0].Guarded() {
		t.Errorf("Expected one guarded START rule, got %+v", r)
	}
	if r := idle.RulesFor("PING"); len(r) != 1 || r[0].Kind != fsm.KindInternal || r[0].Action == nil {
		t.Error("Expected internal PING rule carrying an action")
	}
	if r := idle.RulesFor("STOP"); len(r) != 1 || r[0].Kind != fsm.KindIgnore {
		t.Error("Expected ignore STOP rule")
	}

	running, _ := cfg.State("RUNNING")
	if r := running.RulesFor("RESTART"); len(r) != 1 || r[0].Target != "RUNNING" {
		t.Error("Expected reentry rule targeting its own state")
	}
	if auto := running.AutoRules(); len(auto) != 1 || auto[0].Target != "DONE" {
		t.Errorf("Expected one auto rule to DONE, got %+v", auto)
	}
}

func TestBuilder_ConfigureSameStateAccumulates(t *testing.T) {
	b := New[string, string, int]("A")

	b.Configure("A").Permit("GO", "B")
	b.Configure("B")
	b.Configure("A").Permit("STOP", "B")

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if states := cfg.States(); len(states) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(states))
	}
	a, _ := cfg.State("A")
	if len(a.Rules()) != 2 {
		t.Errorf("Expected 2 rules on A, got %d", len(a.Rules()))
	}
}

func TestBuilder_GlobalHooksAndHandler(t *testing.T) {
	b := New[string, string, int]("A")
	noop := func(tr fsm.Transition[string, string], ctx int) error { return nil }

	b.Configure("A").Permit("GO", "B")
	b.Configure("B").Final()
	b.OnAnyEntry(noop).
		OnAnyExit(noop).
		OnAnyTransition(noop).
		Listen(fsm.Listener[string, string, int]{}).
		OnError(func(state, event string, ctx int, cause error) (string, error) {
			return state, nil
		})

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if len(cfg.OnAnyEntry()) != 1 || len(cfg.OnAnyExit()) != 1 || len(cfg.OnAnyTransition()) != 1 {
		t.Error("Expected one global action of each phase")
	}
	if len(cfg.Listeners()) != 1 {
		t.Errorf("Expected 1 listener, got %d", len(cfg.Listeners()))
	}
	if cfg.ErrorHandler() == nil {
		t.Error("Expected error handler to be set")
	}
}

func TestBuilder_SingleUse(t *testing.T) {
	b := New[string, string, int]("A")
	b.Configure("A").Final()

	if _, err := b.Build(); err != nil {
		t.Fatalf("First Build() failed: %v", err)
	}
	_, err := b.Build()
	if !errors.Is(err, ErrConsumed) {
		t.Errorf("Second Build() = %v, want ErrConsumed", err)
	}
}

func TestBuilder_ChainedDeclaration(t *testing.T) {
	cfg, err := New[string, string, int]("A").
		Configure("A").Permit("GO", "B").
		Configure("B").Final().
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if cfg.Initial() != "A" || cfg.Len() != 2 {
		t.Errorf("Unexpected config: initial=%q states=%d", cfg.Initial(), cfg.Len())
	}
}
