// Package sqlite is a rowstore.Store backed by a local SQLite database via
// the pure-Go modernc.org/sqlite driver. Cells are stored as one JSON array
// per row; WriteRange patches the array inside a transaction so the range
// lands atomically.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

var (
	_ rowstore.Store     = (*Store)(nil)
	_ rowstore.Formatter = (*Store)(nil)
)

// Store wraps the database handle. Open with New; Close closes the handle.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the SQLite database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("rowstore/sqlite: open: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection to
	// avoid SQLITE_BUSY under concurrent commands.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS job_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cells TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	);`)
	if err != nil {
		return fmt.Errorf("rowstore/sqlite: migrate: %w", err)
	}
	return nil
}

// ReadAll returns every row in insertion order.
func (s *Store) ReadAll(ctx context.Context) ([]rowstore.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, cells FROM job_rows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("rowstore/sqlite: read all: %w", err)
	}
	defer rows.Close()

	var out []rowstore.Row
	for rows.Next() {
		var (
			id   int
			blob string
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("rowstore/sqlite: scan: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(blob), &cells); err != nil {
			return nil, fmt.Errorf("rowstore/sqlite: row %d cells: %w", id, err)
		}
		out = append(out, rowstore.Row{ID: id, Cells: cells})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rowstore/sqlite: read all: %w", err)
	}
	return out, nil
}

// Append adds a row and returns its ID.
func (s *Store) Append(ctx context.Context, cells []string) (int, error) {
	blob, err := json.Marshal(cells)
	if err != nil {
		return 0, fmt.Errorf("rowstore/sqlite: marshal cells: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO job_rows (cells) VALUES (?)`, string(blob))
	if err != nil {
		return 0, fmt.Errorf("rowstore/sqlite: append: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("rowstore/sqlite: append id: %w", err)
	}
	return int(id), nil
}

// WriteRange patches cells [colStart, colStart+len(values)) inside one
// transaction.
func (s *Store) WriteRange(ctx context.Context, rowID, colStart int, values []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rowstore/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	var blob string
	err = tx.QueryRowContext(ctx, `SELECT cells FROM job_rows WHERE id = ?`, rowID).Scan(&blob)
	if err == sql.ErrNoRows {
		return fmt.Errorf("rowstore/sqlite: row %d not found", rowID)
	}
	if err != nil {
		return fmt.Errorf("rowstore/sqlite: read row %d: %w", rowID, err)
	}

	var cells []string
	if err := json.Unmarshal([]byte(blob), &cells); err != nil {
		return fmt.Errorf("rowstore/sqlite: row %d cells: %w", rowID, err)
	}
	if colStart < 0 || colStart+len(values) > len(cells) {
		return fmt.Errorf("rowstore/sqlite: range [%d,%d) out of row width %d",
			colStart, colStart+len(values), len(cells))
	}
	copy(cells[colStart:], values)

	patched, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("rowstore/sqlite: marshal cells: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE job_rows SET cells = ? WHERE id = ?`, string(patched), rowID); err != nil {
		return fmt.Errorf("rowstore/sqlite: write row %d: %w", rowID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rowstore/sqlite: commit: %w", err)
	}
	return nil
}

// Highlight records the row's status color.
func (s *Store) Highlight(ctx context.Context, rowID int, color string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE job_rows SET color = ? WHERE id = ?`, color, rowID)
	if err != nil {
		return fmt.Errorf("rowstore/sqlite: highlight row %d: %w", rowID, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
