package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detentlabs/detent/internal/runtime"
	"github.com/detentlabs/detent/pkg/fsm"
)

const orderScenarios = `
scenarios:
  - name: happy path
    context:
      tier: gold
    steps:
      - fire: pay
        expect_state: PAID
        expect_outcome: transitioned
      - fire: ship
        expect_state: SHIPPED
  - name: cancelled orders reject payment
    steps:
      - fire: cancel
        expect_state: CANCELLED
      - fire: pay
        expect_outcome: failed
        reason_contains: final state
`

func orderMachine(t *testing.T) *runtime.Engine[string, string, map[string]any] {
	t.Helper()

	gold := func(_ fsm.Transition[string, string], ctx map[string]any) bool {
		return ctx["tier"] == "gold"
	}

	cfg := fsm.NewConfig(fsm.ConfigSpec[string, string, map[string]any]{
		Initial: "CREATED",
		States: []fsm.StateSpec[string, string, map[string]any]{
			{State: "CREATED", Rules: []fsm.Rule[string, string, map[string]any]{
				{Kind: fsm.KindPermit, Event: "pay", HasEvent: true, Target: "PAID"},
				{Kind: fsm.KindPermit, Event: "cancel", HasEvent: true, Target: "CANCELLED"},
			}},
			{State: "PAID", Rules: []fsm.Rule[string, string, map[string]any]{
				{Kind: fsm.KindPermit, Event: "ship", HasEvent: true, Target: "SHIPPED", Guard: gold},
			}},
			{State: "SHIPPED", Final: true},
			{State: "CANCELLED", Final: true},
		},
	})
	return runtime.New(cfg)
}

func TestParse_Shape(t *testing.T) {
	f, err := Parse([]byte(orderScenarios))
	require.NoError(t, err)
	require.Len(t, f.Scenarios, 2)

	happy := f.Scenarios[0]
	assert.Equal(t, "happy path", happy.Name)
	assert.Equal(t, map[string]any{"tier": "gold"}, happy.Context)
	require.Len(t, happy.Steps, 2)
	assert.Equal(t, "pay", happy.Steps[0].Fire)
	assert.Equal(t, "transitioned", happy.Steps[0].ExpectOutcome)
}

func TestParse_ShapeErrors(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "scenarios: []\n", "no scenarios"},
		{"unnamed", "scenarios:\n  - steps:\n      - fire: go\n", "scenario 0 missing name"},
		{"no steps", "scenarios:\n  - name: x\n", `scenario "x" has no steps`},
		{"missing event", "scenarios:\n  - name: x\n    steps:\n      - expect_state: A\n", `scenario "x" step 0 missing event`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunner_HappyPath(t *testing.T) {
	f, err := Parse([]byte(orderScenarios))
	require.NoError(t, err)

	runner := NewRunner(orderMachine(t), "CREATED")
	report := runner.Run(f.Scenarios[0])

	assert.True(t, report.Passed)
	assert.Equal(t, "SHIPPED", report.Final)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Steps, 2)
	for _, sr := range report.Steps {
		assert.True(t, sr.Passed(), sr.Failure)
	}
}

func TestRunner_ExpectedFailureOutcomePasses(t *testing.T) {
	f, err := Parse([]byte(orderScenarios))
	require.NoError(t, err)

	report := NewRunner(orderMachine(t), "CREATED").Run(f.Scenarios[1])

	assert.True(t, report.Passed)
	assert.Equal(t, "CANCELLED", report.Final)
}

func TestRunner_ReportsMismatch(t *testing.T) {
	sc := Scenario{
		Name: "guard blocks shipping",
		Steps: []Step{
			{Fire: "pay", ExpectState: "PAID"},
			{Fire: "ship", ExpectState: "SHIPPED"},
		},
	}

	// No tier in context, so the gold guard rejects the ship event.
	report := NewRunner(orderMachine(t), "CREATED").Run(sc)

	assert.False(t, report.Passed)
	require.Len(t, report.Steps, 2)
	assert.True(t, report.Steps[0].Passed())
	assert.Contains(t, report.Steps[1].Failure, `expected state "SHIPPED"`)
	assert.Equal(t, "PAID", report.Final)
}

func TestRunner_StartOverridesInitial(t *testing.T) {
	sc := Scenario{
		Name:    "resume from paid",
		Start:   "PAID",
		Context: map[string]any{"tier": "gold"},
		Steps:   []Step{{Fire: "ship", ExpectState: "SHIPPED"}},
	}

	report := NewRunner(orderMachine(t), "CREATED").Run(sc)
	assert.True(t, report.Passed)
}

func TestRunner_RunAllKeepsOrder(t *testing.T) {
	f, err := Parse([]byte(orderScenarios))
	require.NoError(t, err)

	reports := NewRunner(orderMachine(t), "CREATED").RunAll(f)
	require.Len(t, reports, 2)
	assert.Equal(t, "happy path", reports[0].Scenario)
	assert.Equal(t, "cancelled orders reject payment", reports[1].Scenario)
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)
}
