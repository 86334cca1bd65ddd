// CLAUDE:SUMMARY Pure annotation state engine: reducer, grouping, lifecycle, ledgers, history, supersession.

// Package annotate implements the annotation engine for page reviews: a pure
// reducer over an immutable State, driven by wire-decodable actions.
//
// The engine tracks user-drawn overlay annotations (shapes and text notes),
// live style edits and spacing-token edits (two merge-on-write ledgers), an
// undo/redo history shared by all three collections, and the lifecycle of each
// annotation through the human/agent conversation loop.
//
// Reduce never returns an error. Unknown actions, unresolvable ids and
// type-mismatched operations all return the identical *State pointer, so
// callers detect "ignored" purely by reference equality. The only sources of
// non-determinism (ids, timestamps) live in Dispatcher, which stamps creation
// actions before reducing; with a fixed generator and clock the engine is
// fully deterministic.
package annotate
