package detent_test

import (
	"strings"
	"testing"

	"github.com/detentlabs/detent"
	"github.com/detentlabs/detent/pkg/dsl"
	"github.com/detentlabs/detent/pkg/fsm"
)

type orderCtx struct {
	Paid bool
}

func orderMachine(t *testing.T) *detent.Machine[string, string, *orderCtx] {
	t.Helper()

	b := dsl.New[string, string, *orderCtx]("CREATED")
	b.Configure("CREATED").
		Permit("PAY", "PAID")
	b.Configure("PAID").
		Permit("SHIP", "SHIPPED")
	b.Configure("SHIPPED").
		Permit("DELIVER", "DELIVERED")
	b.Configure("DELIVERED").Final()

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return detent.New(cfg)
}

func TestMachine_OrderLifecycle(t *testing.T) {
	m := orderMachine(t)
	ctx := &orderCtx{}

	if got := m.Initial(); got != "CREATED" {
		t.Fatalf("Expected initial state CREATED, got %s", got)
	}

	state := m.Fire("CREATED", "PAY", ctx)
	if state != "PAID" {
		t.Fatalf("Expected PAID, got %s", state)
	}
	state = m.Fire(state, "SHIP", ctx)
	if state != "SHIPPED" {
		t.Fatalf("Expected SHIPPED, got %s", state)
	}
	state = m.Fire(state, "DELIVER", ctx)
	if state != "DELIVERED" {
		t.Fatalf("Expected DELIVERED, got %s", state)
	}

	if !m.IsFinalState(state) {
		t.Error("DELIVERED should be final")
	}
	if m.CanFire(state, "DELIVER", ctx) {
		t.Error("canFire must be false on a final state")
	}
}

func TestMachine_FireNeverRaises(t *testing.T) {
	m := orderMachine(t)

	// Unknown state comes back unchanged.
	if got := m.Fire("LIMBO", "PAY", nil); got != "LIMBO" {
		t.Errorf("Expected LIMBO back, got %s", got)
	}

	res := m.FireWithResult("CREATED", "SHIP", nil)
	if !res.Failed() {
		t.Fatalf("Expected failure, got %v", res.Outcome)
	}
	if !strings.Contains(res.Reason, "No transition configured") {
		t.Errorf("Unexpected reason: %s", res.Reason)
	}
	if res.Debug == nil || res.Debug.Code != fsm.CodeNoTransition {
		t.Errorf("Unexpected debug payload: %+v", res.Debug)
	}
}

func TestMachine_ValidateAccumulates(t *testing.T) {
	b := dsl.New[string, string, any]("A")
	b.Configure("A").Permit("go", "MISSING")
	b.Configure("ORPHAN")

	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	v := detent.New(cfg).Validate()
	if v.OK() {
		t.Fatal("Expected validation errors")
	}
	if len(v.Errors) < 2 {
		t.Fatalf("Expected target and reachability findings, got %v", v.Errors)
	}
}

func TestMachine_ValidateCleanConfig(t *testing.T) {
	if v := orderMachine(t).Validate(); !v.OK() {
		t.Fatalf("Expected clean validation, got %v", v.Errors)
	}
}

func TestMachine_InfoRoundTrip(t *testing.T) {
	info := orderMachine(t).Info()

	if info.Initial != "CREATED" {
		t.Errorf("Expected initial CREATED, got %s", info.Initial)
	}
	if len(info.States) != 4 {
		t.Errorf("Expected 4 states, got %v", info.States)
	}
	if len(info.Transitions) != 3 {
		t.Errorf("Expected 3 edges, got %v", info.Transitions)
	}
	if !info.Final("DELIVERED") {
		t.Error("DELIVERED missing from final states")
	}
}
