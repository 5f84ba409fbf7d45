// Package validator statically analyzes a machine configuration for shape
// defects. It never evaluates guards or touches a context value; everything
// here is reachable-from-the-graph analysis that callers are expected to
// run once at startup and fail fast on.
package validator

import (
	"fmt"
	"strings"

	"github.com/detentlabs/detent/pkg/fsm"
)

// Validate runs every check and accumulates the findings; it never stops at
// the first defect. The error list order follows the check order below.
func Validate[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C]) fsm.ValidationResult {
	var errs []string

	// 1. The initial state must itself be configured.
	if _, ok := cfg.State(cfg.Initial()); !ok {
		errs = append(errs, fmt.Sprintf("Initial state '%v' is not a configured state", cfg.Initial()))
	}

	// 2. An empty machine is not a machine.
	if cfg.Len() == 0 {
		errs = append(errs, "No states are configured")
	}

	// 3. Every Permit target must be configured.
	errs = append(errs, checkTargets(cfg)...)

	// 4. Final states own no rules.
	errs = append(errs, checkFinalStates(cfg)...)

	// 5. At most one unconditional rule per (state, event).
	errs = append(errs, checkUnconditionalDuplicates(cfg)...)

	// 6. Every state must be reachable from the initial state.
	errs = append(errs, checkReachability(cfg)...)

	// 7. Cycles. Permit cycles reproduce the first one found; a pure
	// auto-transition cycle would loop at dispatch time, so it is reported
	// as well.
	if path, found := firstCycle(cfg, fsm.KindPermit); found {
		errs = append(errs, "Circular dependency detected: "+path)
	}
	if path, found := firstCycle(cfg, fsm.KindAutoTransition); found {
		errs = append(errs, "Auto-transition cycle detected: "+path)
	}

	return fsm.Invalid(errs)
}

func checkTargets[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C]) []string {
	var errs []string
	for _, s := range cfg.States() {
		def, _ := cfg.State(s)
		for _, r := range def.Rules() {
			if r.Kind != fsm.KindPermit && r.Kind != fsm.KindAutoTransition {
				continue
			}
			if _, ok := cfg.State(r.Target); !ok {
				errs = append(errs, fmt.Sprintf("State '%v' has a transition to unconfigured state '%v'", s, r.Target))
			}
		}
	}
	return errs
}

func checkFinalStates[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C]) []string {
	var errs []string
	for _, s := range cfg.States() {
		def, _ := cfg.State(s)
		if def.Final() && len(def.Rules()) > 0 {
			errs = append(errs, fmt.Sprintf("Final state '%v' should not have any transitions", s))
		}
	}
	return errs
}

func checkUnconditionalDuplicates[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C]) []string {
	var errs []string
	for _, s := range cfg.States() {
		def, _ := cfg.State(s)
		unconditional := make(map[E]int)
		for _, r := range def.Rules() {
			if r.HasEvent && !r.Guarded() {
				unconditional[r.Event]++
			}
		}
		// Report in first-declaration order, not map order.
		reported := make(map[E]bool)
		for _, r := range def.Rules() {
			if !r.HasEvent || reported[r.Event] {
				continue
			}
			if unconditional[r.Event] > 1 {
				errs = append(errs, fmt.Sprintf("State '%v' has multiple unconditional transitions for event '%v'", s, r.Event))
			}
			reported[r.Event] = true
		}
	}
	return errs
}

// checkReachability walks breadth-first from the initial state following
// Permit edges only. Guards are ignored; reentry, ignore, internal and
// auto-transition rules are not traversal edges.
func checkReachability[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C]) []string {
	visited := make(map[S]bool)
	if _, ok := cfg.State(cfg.Initial()); ok {
		queue := []S{cfg.Initial()}
		visited[cfg.Initial()] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			def, _ := cfg.State(current)
			for _, r := range def.Rules() {
				if r.Kind != fsm.KindPermit {
					continue
				}
				if _, ok := cfg.State(r.Target); !ok || visited[r.Target] {
					continue
				}
				visited[r.Target] = true
				queue = append(queue, r.Target)
			}
		}
	}

	var errs []string
	for _, s := range cfg.States() {
		if !visited[s] {
			errs = append(errs, fmt.Sprintf("State '%v' is not reachable from the initial state", s))
		}
	}
	return errs
}

// firstCycle runs a depth-first search over edges of the given kind and
// reports the first back-edge found as a rendered cycle path. Traversal
// stops there; later cycles stay unreported.
func firstCycle[S comparable, E comparable, C any](cfg *fsm.Config[S, E, C], kind fsm.RuleKind) (string, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[S]int)
	var stack []S

	var visit func(s S) (string, bool)
	visit = func(s S) (string, bool) {
		color[s] = gray
		stack = append(stack, s)

		def, _ := cfg.State(s)
		for _, r := range def.Rules() {
			if r.Kind != kind {
				continue
			}
			if _, ok := cfg.State(r.Target); !ok {
				continue
			}
			switch color[r.Target] {
			case gray:
				return renderCycle(stack, r.Target), true
			case white:
				if path, found := visit(r.Target); found {
					return path, true
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[s] = black
		return "", false
	}

	for _, s := range cfg.States() {
		if color[s] != white {
			continue
		}
		if path, found := visit(s); found {
			return path, true
		}
	}
	return "", false
}

func renderCycle[S comparable](stack []S, target S) string {
	start := 0
	for i, s := range stack {
		if s == target {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(stack)-start+1)
	for _, s := range stack[start:] {
		parts = append(parts, fmt.Sprintf("%v", s))
	}
	parts = append(parts, fmt.Sprintf("%v", target))
	return strings.Join(parts, " -> ")
}
