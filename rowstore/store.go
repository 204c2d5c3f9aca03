// Package rowstore defines the persistence contract for the shared job grid.
// The production store is a spreadsheet-like mutable table the engine does
// not control; the interface keeps the engine testable against the in-memory
// backend and portable to a real database. Backends: Memory, SQLite,
// PostgreSQL.
package rowstore

import "context"

// Row is one grid row: a stable ID plus its ordered cells.
type Row struct {
	ID    int
	Cells []string
}

// Store is the row grid contract. ReadAll returns a fresh snapshot of the
// whole table; commands never reuse a snapshot across executions. WriteRange
// must apply the given values to one contiguous run of columns atomically:
// either all cells land or the call errors.
type Store interface {
	// ReadAll returns every row in insertion order.
	ReadAll(ctx context.Context) ([]Row, error)

	// Append adds a new row and returns its ID.
	Append(ctx context.Context, cells []string) (int, error)

	// WriteRange overwrites cells [colStart, colStart+len(values)) of rowID.
	WriteRange(ctx context.Context, rowID, colStart int, values []string) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Formatter is the optional cosmetic surface: backends that can record a
// per-row status highlight implement it. Highlight failures are logged and
// swallowed by callers; they are never part of the consistency contract.
type Formatter interface {
	Highlight(ctx context.Context, rowID int, color string) error
}

// Highlight colors by status, mirroring the dashboard legend.
const (
	ColorOpen  = "#d9ead3"
	ColorPause = "#fff2cc"
	ColorOT    = "#d0e0e3"
	ColorClose = "#efefef"
)
