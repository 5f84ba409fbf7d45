package fsm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderSpec() ConfigSpec[string, string, int] {
	return ConfigSpec[string, string, int]{
		Initial: "CREATED",
		States: []StateSpec[string, string, int]{
			{
				State: "CREATED",
				Rules: []Rule[string, string, int]{
					{Kind: KindPermit, Event: "PAY", HasEvent: true, Target: "PAID"},
					{Kind: KindPermit, Event: "CANCEL", HasEvent: true, Target: "CANCELLED"},
					{Kind: KindIgnore, Event: "PAY", HasEvent: true, Target: "CREATED"},
				},
			},
			{
				State: "PAID",
				Rules: []Rule[string, string, int]{
					{Kind: KindAutoTransition, Target: "SHIPPED"},
					{Kind: KindInternal, Event: "POKE", HasEvent: true, Target: "PAID"},
				},
			},
			{State: "SHIPPED"},
			{State: "CANCELLED", Final: true},
		},
	}
}

func TestRulesForKeepsDeclarationOrder(t *testing.T) {
	cfg := NewConfig(orderSpec())
	def, ok := cfg.State("CREATED")
	require.True(t, ok)

	rules := def.RulesFor("PAY")
	require.Len(t, rules, 2)
	assert.Equal(t, KindPermit, rules[0].Kind)
	assert.Equal(t, KindIgnore, rules[1].Kind)

	assert.Empty(t, def.RulesFor("REFUND"))
}

func TestAutoRulesAreSeparatedFromEventRules(t *testing.T) {
	cfg := NewConfig(orderSpec())
	def, ok := cfg.State("PAID")
	require.True(t, ok)

	auto := def.AutoRules()
	require.Len(t, auto, 1)
	assert.Equal(t, "SHIPPED", auto[0].Target)

	assert.Equal(t, []string{"POKE"}, def.Events())
	assert.Empty(t, def.RulesFor("SHIPPED"))
}

func TestMergeInvalidatesEventIndex(t *testing.T) {
	cfg := NewConfig(orderSpec())
	def, ok := cfg.State("CREATED")
	require.True(t, ok)

	// Force the index to build, then merge a second draft for the state.
	require.Len(t, def.RulesFor("PAY"), 2)

	def.merge(StateSpec[string, string, int]{
		State: "CREATED",
		Rules: []Rule[string, string, int]{
			{Kind: KindPermit, Event: "REFUND", HasEvent: true, Target: "CANCELLED"},
		},
	})

	assert.Len(t, def.RulesFor("REFUND"), 1)
	assert.Len(t, def.RulesFor("PAY"), 2)
	assert.Equal(t, []string{"PAY", "CANCEL", "REFUND"}, def.Events())
}

func TestIndexRebuildIsConcurrencySafe(t *testing.T) {
	cfg := NewConfig(orderSpec())
	def, ok := cfg.State("CREATED")
	require.True(t, ok)
	def.idx.Store(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := def.RulesFor("PAY"); len(got) != 2 {
					t.Errorf("RulesFor(PAY) = %d rules, want 2", len(got))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFinalStateDefinition(t *testing.T) {
	cfg := NewConfig(orderSpec())
	def, ok := cfg.State("CANCELLED")
	require.True(t, ok)
	assert.True(t, def.Final())
	assert.Empty(t, def.Rules())
}
