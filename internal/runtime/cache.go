package runtime

import (
	"sync"

	"github.com/detentlabs/detent/pkg/fsm"
)

// resultCache memoizes the success and ignored result values an engine
// returns most often. It has a fixed capacity: once full it stops
// inserting, so a machine with a huge state space costs fresh allocations
// but never unbounded memory. Failed results carry call-specific
// diagnostics and are never cached.
type resultCache[S comparable] struct {
	mu    sync.RWMutex
	limit int
	byKey map[cacheKey[S]]fsm.Result[S]
}

type cacheKey[S comparable] struct {
	state   S
	outcome fsm.Outcome
}

func newResultCache[S comparable](limit int) *resultCache[S] {
	return &resultCache[S]{
		limit: limit,
		byKey: make(map[cacheKey[S]]fsm.Result[S]),
	}
}

// intern returns the cached copy of res, storing it while capacity lasts.
func (c *resultCache[S]) intern(res fsm.Result[S]) fsm.Result[S] {
	if res.Failed() {
		return res
	}
	key := cacheKey[S]{state: res.State, outcome: res.Outcome}

	c.mu.RLock()
	hit, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok {
		return hit
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.byKey[key]; ok {
		return hit
	}
	if len(c.byKey) < c.limit {
		c.byKey[key] = res
	}
	return res
}

func (c *resultCache[S]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
