// Package bun is a rowstore.Store backed by PostgreSQL through the Bun ORM.
// Cells are stored as one JSONB array per row; WriteRange patches the array
// under SELECT ... FOR UPDATE so concurrent commands serialize per row.
package bun

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

var (
	_ rowstore.Store     = (*Store)(nil)
	_ rowstore.Formatter = (*Store)(nil)
)

type rowModel struct {
	bun.BaseModel `bun:"table:job_rows"`

	ID    int64    `bun:"id,pk,autoincrement"`
	Cells []string `bun:"cells,type:jsonb"`
	Color string   `bun:"color,default:''"`
}

// Store is the PostgreSQL grid. The caller owns the *bun.DB lifecycle when
// using New; Open creates and owns one from a DSN.
type Store struct {
	db    *bun.DB
	owned bool
}

// New wraps an existing bun DB. The Store will not close it.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL with the given DSN and migrates the schema.
func Open(dsn string) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	s := &Store{db: db, owned: true}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the grid table.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS job_rows (
		id BIGSERIAL PRIMARY KEY,
		cells JSONB NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return fmt.Errorf("rowstore/bun: migrate: %w", err)
	}
	return nil
}

// ReadAll returns every row in insertion order.
func (s *Store) ReadAll(ctx context.Context) ([]rowstore.Row, error) {
	var models []rowModel
	if err := s.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rowstore/bun: read all: %w", err)
	}
	out := make([]rowstore.Row, 0, len(models))
	for i := range models {
		out = append(out, rowstore.Row{ID: int(models[i].ID), Cells: models[i].Cells})
	}
	return out, nil
}

// Append adds a row and returns its ID.
func (s *Store) Append(ctx context.Context, cells []string) (int, error) {
	m := &rowModel{Cells: cells}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return 0, fmt.Errorf("rowstore/bun: append: %w", err)
	}
	return int(m.ID), nil
}

// WriteRange patches cells [colStart, colStart+len(values)) under a row lock.
func (s *Store) WriteRange(ctx context.Context, rowID, colStart int, values []string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := new(rowModel)
		err := tx.NewSelect().Model(m).Where("id = ?", rowID).For("UPDATE").Scan(ctx)
		if err == sql.ErrNoRows {
			return fmt.Errorf("rowstore/bun: row %d not found", rowID)
		}
		if err != nil {
			return fmt.Errorf("rowstore/bun: read row %d: %w", rowID, err)
		}
		if colStart < 0 || colStart+len(values) > len(m.Cells) {
			return fmt.Errorf("rowstore/bun: range [%d,%d) out of row width %d",
				colStart, colStart+len(values), len(m.Cells))
		}
		copy(m.Cells[colStart:], values)
		if _, err := tx.NewUpdate().Model(m).Column("cells").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("rowstore/bun: write row %d: %w", rowID, err)
		}
		return nil
	})
}

// Highlight records the row's status color.
func (s *Store) Highlight(ctx context.Context, rowID int, color string) error {
	_, err := s.db.NewUpdate().Model((*rowModel)(nil)).
		Set("color = ?", color).
		Where("id = ?", rowID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowstore/bun: highlight row %d: %w", rowID, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the DB handle if this Store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
