// Package registry maps guard and action names to implementations so that
// machine definitions loaded from files can reference behavior by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/detentlabs/detent/pkg/fsm"
)

// Guard is the guard signature used by definition-loaded machines, which
// are string-typed and carry a map context.
type Guard = fsm.Guard[string, string, map[string]any]

// Action is the action signature used by definition-loaded machines.
type Action = fsm.Action[string, string, map[string]any]

// GuardFactory builds a guard from the arguments given in a definition.
// It is called once per reference at load time, so argument validation
// errors surface before the machine runs.
type GuardFactory func(args map[string]any) (Guard, error)

// ActionFactory builds an action from the arguments given in a definition.
type ActionFactory func(args map[string]any) (Action, error)

// Registry manages the available guards and actions.
type Registry struct {
	mu      sync.RWMutex
	guards  map[string]GuardFactory
	actions map[string]ActionFactory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		guards:  make(map[string]GuardFactory),
		actions: make(map[string]ActionFactory),
	}
}

// RegisterGuard adds a guard that takes no arguments.
// If a guard with the same name exists, it is overwritten.
func (r *Registry) RegisterGuard(name string, g Guard) {
	r.RegisterGuardFactory(name, func(map[string]any) (Guard, error) {
		return g, nil
	})
}

// RegisterGuardFactory adds a parameterized guard to the registry.
func (r *Registry) RegisterGuardFactory(name string, fn GuardFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards[name] = fn
}

// RegisterAction adds an action that takes no arguments.
// If an action with the same name exists, it is overwritten.
func (r *Registry) RegisterAction(name string, a Action) {
	r.RegisterActionFactory(name, func(map[string]any) (Action, error) {
		return a, nil
	})
}

// RegisterActionFactory adds a parameterized action to the registry.
func (r *Registry) RegisterActionFactory(name string, fn ActionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// NewGuard looks up a guard factory by name and builds a guard from args.
// Returns an error if the guard is not registered.
func (r *Registry) NewGuard(name string, args map[string]any) (Guard, error) {
	r.mu.RLock()
	fn, ok := r.guards[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("guard not found: %s", name)
	}

	return fn(args)
}

// NewAction looks up an action factory by name and builds an action from args.
// Returns an error if the action is not registered.
func (r *Registry) NewAction(name string, args map[string]any) (Action, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("action not found: %s", name)
	}

	return fn(args)
}

// GuardNames returns the registered guard names in sorted order.
func (r *Registry) GuardNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.guards)
}

// ActionNames returns the registered action names in sorted order.
func (r *Registry) ActionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
