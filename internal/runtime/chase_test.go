package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detentlabs/detent/internal/runtime"
	"github.com/detentlabs/detent/pkg/dsl"
	"github.com/detentlabs/detent/pkg/fsm"
)

func guardTrue(tr fsm.Transition[string, string], ctx *orderCtx) bool  { return true }
func guardFalse(tr fsm.Transition[string, string], ctx *orderCtx) bool { return false }

func TestAutoChase_LandsInGuardedTarget(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("QUEUED")
	b.Configure("QUEUED").Permit("PROCESS", "PROCESSING")
	b.Configure("PROCESSING").
		AutoTransitionIf("COMPLETED", guardTrue).
		AutoTransitionIf("FAILED", guardFalse)
	b.Configure("COMPLETED").Final()
	b.Configure("FAILED").Final()
	cfg, err := b.Build()
	require.NoError(t, err)

	eng := runtime.New(cfg)
	res := eng.FireWithResult("QUEUED", "PROCESS", &orderCtx{})

	assert.True(t, res.Transitioned())
	assert.Equal(t, "COMPLETED", res.State)
}

func TestAutoChase_SkipsFailingGuards(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("QUEUED")
	b.Configure("QUEUED").Permit("PROCESS", "PROCESSING")
	b.Configure("PROCESSING").
		AutoTransitionIf("FAILED", guardFalse).
		AutoTransitionIf("COMPLETED", guardTrue)
	b.Configure("COMPLETED").Final()
	b.Configure("FAILED").Final()
	cfg, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", runtime.New(cfg).Fire("QUEUED", "PROCESS", &orderCtx{}))
}

func TestAutoChase_MultiHopRunsEveryEntry(t *testing.T) {
	ctx := &orderCtx{}
	entry := func(label string) fsm.Action[string, string, *orderCtx] {
		return func(tr fsm.Transition[string, string], c *orderCtx) error {
			c.record(label)
			return nil
		}
	}

	b := dsl.New[string, string, *orderCtx]("START")
	b.Configure("START").Permit("GO", "STAGE1")
	b.Configure("STAGE1").OnEntry(entry("stage1")).AutoTransition("STAGE2")
	b.Configure("STAGE2").OnEntry(entry("stage2")).AutoTransition("STAGE3")
	b.Configure("STAGE3").OnEntry(entry("stage3")).AutoTransition("DONE")
	b.Configure("DONE").OnEntry(entry("done")).Final()
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("START", "GO", ctx)

	assert.True(t, res.Transitioned())
	assert.Equal(t, "DONE", res.State)
	assert.Equal(t, []string{"stage1", "stage2", "stage3", "done"}, ctx.calls)
}

func TestAutoChase_IdempotentTerminal(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("QUEUED")
	b.Configure("QUEUED").
		Permit("PROCESS", "PROCESSING").
		Ignore("NOISE")
	b.Configure("PROCESSING").AutoTransition("COMPLETED")
	b.Configure("COMPLETED")
	cfg, err := b.Build()
	require.NoError(t, err)

	eng := runtime.New(cfg)
	first := eng.Fire("QUEUED", "PROCESS", &orderCtx{})
	second := eng.Fire("QUEUED", "PROCESS", &orderCtx{})

	assert.Equal(t, "COMPLETED", first)
	assert.Equal(t, first, second)
}

func TestAutoChase_EventAbsentInChainedHops(t *testing.T) {
	var seen []bool
	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").Permit("GO", "B")
	b.Configure("B").AutoTransition("C")
	b.Configure("C")
	b.Listen(fsm.Listener[string, string, *orderCtx]{
		OnTransition: func(tr fsm.Transition[string, string], c *orderCtx) {
			seen = append(seen, tr.HasEvent)
		},
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	runtime.New(cfg).Fire("A", "GO", &orderCtx{})

	// First hop carries the triggering event, the chased hop does not.
	assert.Equal(t, []bool{true, false}, seen)
}

func TestAutoChase_OverflowOnCycle(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("START")
	b.Configure("START").Permit("GO", "PING")
	b.Configure("PING").AutoTransition("PONG")
	b.Configure("PONG").AutoTransition("PING")
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("START", "GO", &orderCtx{})

	assert.True(t, res.Failed())
	assert.Contains(t, res.Reason, "Auto-transition chain exceeded 64 steps")
	require.NotNil(t, res.Debug)
	assert.Equal(t, fsm.CodeAutoChaseBudget, res.Debug.Code)
	assert.Contains(t, []string{"PING", "PONG"}, res.State)
}

func TestAutoChase_StopsAtFinalTarget(t *testing.T) {
	ctx := &orderCtx{}
	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").Permit("GO", "B")
	b.Configure("B").
		OnEntry(func(tr fsm.Transition[string, string], c *orderCtx) error {
			c.record("entered")
			return nil
		}).
		Final()
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("A", "GO", ctx)

	assert.True(t, res.Transitioned())
	assert.Equal(t, "B", res.State)
	assert.Equal(t, []string{"entered"}, ctx.calls)
}
