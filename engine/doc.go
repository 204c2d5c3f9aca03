// Package engine implements the job lifecycle commands over the shared row
// grid. Every command re-reads the grid, locates its target row by normalized
// identity, applies the state transition to an in-memory record, recomputes
// all session-derived fields, and persists the whole mutable column range in
// one atomic write followed by a verification read-back.
//
// The grid is the single source of truth and is hand-editable, so the engine
// holds no state between commands beyond its configuration.
package engine
