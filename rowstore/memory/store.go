// Package memory is a fully in-memory rowstore.Store. Safe for concurrent
// use. Intended for unit tests and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

// Ensure Store satisfies the contracts at compile time.
var (
	_ rowstore.Store     = (*Store)(nil)
	_ rowstore.Formatter = (*Store)(nil)
)

// Store holds the grid under one mutex. Reads hand out deep copies so a
// caller can never mutate shared state through a snapshot.
type Store struct {
	mu     sync.RWMutex
	rows   [][]string
	colors map[int]string
	closed bool

	// FailReads forces ReadAll to error; lets tests exercise the fail-soft
	// read path.
	FailReads bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{colors: make(map[int]string)}
}

// ReadAll returns a copy of every row in insertion order.
func (s *Store) ReadAll(_ context.Context) ([]rowstore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("rowstore/memory: store closed")
	}
	if s.FailReads {
		return nil, fmt.Errorf("rowstore/memory: simulated read failure")
	}
	out := make([]rowstore.Row, len(s.rows))
	for i, cells := range s.rows {
		out[i] = rowstore.Row{ID: i, Cells: append([]string(nil), cells...)}
	}
	return out, nil
}

// Append adds a row and returns its ID.
func (s *Store) Append(_ context.Context, cells []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("rowstore/memory: store closed")
	}
	s.rows = append(s.rows, append([]string(nil), cells...))
	return len(s.rows) - 1, nil
}

// WriteRange overwrites a contiguous cell run under the lock, so the range
// lands atomically with respect to ReadAll.
func (s *Store) WriteRange(_ context.Context, rowID, colStart int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("rowstore/memory: store closed")
	}
	if rowID < 0 || rowID >= len(s.rows) {
		return fmt.Errorf("rowstore/memory: row %d out of range", rowID)
	}
	row := s.rows[rowID]
	if colStart < 0 || colStart+len(values) > len(row) {
		return fmt.Errorf("rowstore/memory: range [%d,%d) out of row width %d",
			colStart, colStart+len(values), len(row))
	}
	copy(row[colStart:], values)
	return nil
}

// Highlight records the row's status color.
func (s *Store) Highlight(_ context.Context, rowID int, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rowID < 0 || rowID >= len(s.rows) {
		return fmt.Errorf("rowstore/memory: row %d out of range", rowID)
	}
	s.colors[rowID] = color
	return nil
}

// Color returns the recorded highlight for a row (test helper).
func (s *Store) Color(rowID int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colors[rowID]
}

// Ping reports whether the store is usable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("rowstore/memory: store closed")
	}
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
