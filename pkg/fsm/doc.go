/*
Package fsm contains the core data model for the Detent dispatch engine.

It defines the building blocks of a state machine configuration: transition
rules, state definitions, the built configuration, and the value types that
dispatch and validation report back to callers. The package is kept pure and
free of I/O or presentation concerns; the engine, the builder and all adapters
operate on these types.

The model is generic over three type parameters used throughout the module:

  - S: the state identifier, any comparable type (string, int, custom enums).
  - E: the event identifier, any comparable type.
  - C: the caller-owned context threaded through guards, actions and
    listeners. The engine never inspects, copies or synchronizes it.

# Key Entities

  - Rule: one immutable reaction to an event within a state (five kinds).
  - StateSpec / ConfigSpec: the mutable draft consumed by NewConfig.
  - Config / StateDef: the immutable, concurrency-safe built form.
  - Result: the outcome of a single dispatch (state, outcome, reason, debug).
  - ValidationResult: the outcome of static configuration analysis.

A Config is built exactly once (normally through the dsl package) and is then
safe for concurrent readers without external locking.
*/
package fsm
