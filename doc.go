// Package cnclog is the job lifecycle and time-accounting engine behind the
// TPT shop-floor dashboard. It maintains authoritative state for manufacturing
// job steps tracked row-by-row in a shared, mutable, spreadsheet-like store
// that multiple floor terminals write to concurrently.
//
// The engine enforces a four-state machine (OPEN, PAUSE, OT, CLOSE), computes
// elapsed working time and overtime against a fixed weekly business calendar
// with lunch and break exclusions, keeps nested pause and overtime sessions as
// append-only logs, and recomputes every derived field from those logs after
// each mutation.
//
// # Architecture
//
// Each subsystem lives in its own package: calendar (pure working-time math),
// normalize (identifier canonicalization), session (pause/overtime ledger),
// record (the 29-column row schema), engine (the state machine commands),
// board (the dashboard read surface), and sweep (the daily overtime cutoff
// sweeper). Persistence goes through the rowstore.Store interface; backends
// exist for an in-memory grid, SQLite, and PostgreSQL.
//
// The root package holds the shared sentinel errors, the Thai user-facing
// messages the floor terminals display, and the service configuration.
package cnclog
