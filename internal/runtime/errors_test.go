package runtime_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detentlabs/detent/internal/runtime"
	"github.com/detentlabs/detent/pkg/dsl"
	"github.com/detentlabs/detent/pkg/fsm"
)

func failingEntryBuilder() *dsl.Builder[string, string, *orderCtx] {
	b := dsl.New[string, string, *orderCtx]("CREATED")
	b.Configure("CREATED").Permit("PAY", "PAID")
	b.Configure("PAID").OnEntry(func(tr fsm.Transition[string, string], c *orderCtx) error {
		return errors.New("payment ledger offline")
	})
	return b
}

func TestFire_ActionErrorWithoutHandler(t *testing.T) {
	cfg, err := failingEntryBuilder().Build()
	require.NoError(t, err)
	eng := runtime.New(cfg)

	res := eng.FireWithResult("CREATED", "PAY", &orderCtx{})

	assert.True(t, res.Failed())
	assert.Equal(t, "CREATED", res.State)
	assert.Equal(t, "Unhandled error: payment ledger offline", res.Reason)
	require.NotNil(t, res.Debug)
	assert.Equal(t, fsm.CodeUnhandledError, res.Debug.Code)

	// The convenience wrapper reports the same settled state.
	assert.Equal(t, "CREATED", eng.Fire("CREATED", "PAY", &orderCtx{}))
}

func TestFire_ActionPanicIsCaught(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").
		Permit("GO", "B").
		OnExit(func(tr fsm.Transition[string, string], c *orderCtx) error {
			panic("exit blew up")
		})
	b.Configure("B")
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("A", "GO", &orderCtx{})

	assert.True(t, res.Failed())
	assert.Equal(t, "A", res.State)
	assert.Equal(t, "Unhandled error: exit blew up", res.Reason)
}

func TestFire_GuardPanicIsCaught(t *testing.T) {
	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").PermitIf("GO", "B", func(tr fsm.Transition[string, string], c *orderCtx) bool {
		panic("guard blew up")
	})
	b.Configure("B")
	cfg, err := b.Build()
	require.NoError(t, err)
	eng := runtime.New(cfg)

	res := eng.FireWithResult("A", "GO", &orderCtx{})
	assert.True(t, res.Failed())
	assert.Equal(t, "Unhandled error: guard blew up", res.Reason)

	// A probe never raises either, it just declines.
	assert.False(t, eng.CanFire("A", "GO", &orderCtx{}))
}

func TestFire_ErrorHandlerRecovers(t *testing.T) {
	b := failingEntryBuilder()
	b.OnError(func(state, event string, c *orderCtx, cause error) (string, error) {
		c.record("handled:" + cause.Error())
		return "QUARANTINE", nil
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	ctx := &orderCtx{}
	res := runtime.New(cfg).FireWithResult("CREATED", "PAY", ctx)

	assert.True(t, res.Failed())
	assert.Equal(t, "QUARANTINE", res.State)
	assert.Equal(t, "Error handled: payment ledger offline", res.Reason)
	require.NotNil(t, res.Debug)
	assert.Equal(t, fsm.CodeTransitionError, res.Debug.Code)
	assert.Equal(t, []string{"handled:payment ledger offline"}, ctx.calls)
}

func TestFire_ErrorHandlerFails(t *testing.T) {
	b := failingEntryBuilder()
	b.OnError(func(state, event string, c *orderCtx, cause error) (string, error) {
		return "", errors.New("handler also offline")
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("CREATED", "PAY", &orderCtx{})

	assert.True(t, res.Failed())
	assert.Equal(t, "CREATED", res.State)
	assert.Equal(t, "Error in error handler: handler also offline", res.Reason)
	require.NotNil(t, res.Debug)
	assert.Equal(t, fsm.CodeErrorHandler, res.Debug.Code)
	assert.Contains(t, res.Debug.Detail, "payment ledger offline")
}

func TestFire_ErrorHandlerPanics(t *testing.T) {
	b := failingEntryBuilder()
	b.OnError(func(state, event string, c *orderCtx, cause error) (string, error) {
		panic("handler blew up")
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("CREATED", "PAY", &orderCtx{})

	assert.True(t, res.Failed())
	assert.Equal(t, "CREATED", res.State)
	assert.Equal(t, "Error in error handler: handler blew up", res.Reason)
	require.NotNil(t, res.Debug)
	assert.Equal(t, fsm.CodeErrorHandler, res.Debug.Code)
}

func TestFire_ListenerPanicDoesNotAbortDispatch(t *testing.T) {
	ctx := &orderCtx{}
	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").Permit("GO", "B")
	b.Configure("B")
	b.Listen(fsm.Listener[string, string, *orderCtx]{
		OnStateEntry: func(s string, c *orderCtx) { panic("noisy listener") },
	})
	b.Listen(fsm.Listener[string, string, *orderCtx]{
		OnStateEntry: func(s string, c *orderCtx) { c.record("entry:" + s) },
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	res := runtime.New(cfg).FireWithResult("A", "GO", ctx)

	assert.True(t, res.Transitioned())
	assert.Equal(t, "B", res.State)
	assert.Equal(t, []string{"entry:B"}, ctx.calls)
}

func TestFire_DispatchErrorListenerIsNotified(t *testing.T) {
	var notified []string
	b := failingEntryBuilder()
	b.Listen(fsm.Listener[string, string, *orderCtx]{
		OnDispatchError: func(state, event string, c *orderCtx, err error) {
			notified = append(notified, state+"/"+event+": "+err.Error())
		},
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	runtime.New(cfg).FireWithResult("CREATED", "PAY", &orderCtx{})

	assert.Equal(t, []string{"CREATED/PAY: payment ledger offline"}, notified)
}

func TestFire_ErrorIdentityReachesHandler(t *testing.T) {
	sentinel := errors.New("stock exhausted")
	var seen error

	b := dsl.New[string, string, *orderCtx]("A")
	b.Configure("A").Permit("GO", "B")
	b.Configure("B").OnEntry(func(tr fsm.Transition[string, string], c *orderCtx) error {
		return sentinel
	})
	b.OnError(func(state, event string, c *orderCtx, cause error) (string, error) {
		seen = cause
		return state, nil
	})
	cfg, err := b.Build()
	require.NoError(t, err)

	runtime.New(cfg).FireWithResult("A", "GO", &orderCtx{})

	assert.True(t, errors.Is(seen, sentinel))
}
