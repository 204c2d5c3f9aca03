package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/backoff"
	"github.com/tpt-cnclog/mfg-dashboard/calendar"
	"github.com/tpt-cnclog/mfg-dashboard/metrics"
	"github.com/tpt-cnclog/mfg-dashboard/normalize"
	"github.com/tpt-cnclog/mfg-dashboard/record"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

const defaultVerifyAttempts = 3

// Engine executes lifecycle commands against a row store using a factory
// calendar for all time math. Safe for concurrent use as long as the backing
// store serializes writes.
type Engine struct {
	store rowstore.Store
	cal   *calendar.Config
	log   *slog.Logger

	retry          backoff.Strategy
	verifyAttempts int
	now            func() time.Time
	onMutate       func()
	metrics        *metrics.Metrics

	// nonQuantified holds normalized process names that close without piece
	// counts; customWorkEnd overrides the last working-window end per
	// normalized process name.
	nonQuantified map[string]bool
	customWorkEnd map[string]calendar.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides the time source. Tests run on a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBackoff sets the delay strategy for write verification retries.
func WithBackoff(s backoff.Strategy) Option {
	return func(e *Engine) { e.retry = s }
}

// WithVerifyAttempts bounds how many read-backs a write may take before the
// command fails.
func WithVerifyAttempts(n int) Option {
	return func(e *Engine) { e.verifyAttempts = n }
}

// WithOnMutate registers a hook invoked after every successful mutation.
// The dashboard uses it to drop its cache.
func WithOnMutate(fn func()) Option {
	return func(e *Engine) { e.onMutate = fn }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithNonQuantified marks process names whose jobs close without fg/ng/rework
// counts.
func WithNonQuantified(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.nonQuantified[normalize.String(n)] = true
		}
	}
}

// WithCustomWorkEnd overrides the end of the last working window for the
// given process names when computing process time at close.
func WithCustomWorkEnd(ends map[string]calendar.Clock) Option {
	return func(e *Engine) {
		for name, c := range ends {
			e.customWorkEnd[normalize.String(name)] = c
		}
	}
}

// New creates an Engine over store and cal.
func New(store rowstore.Store, cal *calendar.Config, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		cal:            cal,
		log:            slog.Default(),
		retry:          backoff.DefaultStrategy(),
		verifyAttempts: defaultVerifyAttempts,
		now:            time.Now,
		nonQuantified:  make(map[string]bool),
		customWorkEnd:  make(map[string]calendar.Clock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func cellAt(cells []string, col int) string {
	if col < len(cells) {
		return cells[col]
	}
	return ""
}

func rowIdentity(cells []string) record.Identity {
	return record.Identity{
		ProjectNo:   cellAt(cells, record.ColProjectNo),
		PartName:    cellAt(cells, record.ColPartName),
		ProcessName: cellAt(cells, record.ColProcessName),
		ProcessNo:   cellAt(cells, record.ColProcessNo),
		StepNo:      cellAt(cells, record.ColStepNo),
		MachineNo:   cellAt(cells, record.ColMachineNo),
	}
}

// findActive locates the most recent active row matching id and decodes it.
// Identity and status come from the raw cells, so a row with a corrupt
// session log is still found; decoding it then surfaces the corruption
// instead of mutating a row whose history is unreadable.
func (e *Engine) findActive(rows []rowstore.Row, id record.Identity) (*record.Record, error) {
	key := id.Key()
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if !record.Status(cellAt(row.Cells, record.ColStatus)).Active() {
			continue
		}
		if rowIdentity(row.Cells).Key() != key {
			continue
		}
		return record.FromRow(row.ID, row.Cells, e.cal.Location())
	}
	return nil, cnclog.ErrJobNotFound
}

// writeBack persists the full mutable range of r in one atomic call, then
// reads the status cell back until it matches. Highlighting is cosmetic and
// never fails the command.
func (e *Engine) writeBack(ctx context.Context, r *record.Record) error {
	cells, err := r.MutableCells()
	if err != nil {
		return err
	}
	if err := e.store.WriteRange(ctx, r.Row, record.ColEndEmployee, cells); err != nil {
		return fmt.Errorf("%w: row %d: %w", cnclog.ErrWriteFailed, r.Row, err)
	}
	if err := e.verifyStatus(ctx, r.Row, r.Status); err != nil {
		return fmt.Errorf("%w: row %d: %w", cnclog.ErrWriteFailed, r.Row, err)
	}
	e.highlight(ctx, r.Row, r.Status)
	e.mutated()
	return nil
}

func (e *Engine) verifyStatus(ctx context.Context, rowID int, want record.Status) error {
	return backoff.Retry(ctx, e.verifyAttempts, e.retry, func() error {
		rows, err := e.store.ReadAll(ctx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.ID != rowID {
				continue
			}
			if got := record.Status(cellAt(row.Cells, record.ColStatus)); got != want {
				return fmt.Errorf("engine: verify row %d: status %q, want %q", rowID, got, want)
			}
			return nil
		}
		return cnclog.ErrJobNotFound
	})
}

var statusColors = map[record.Status]string{
	record.StatusOpen:  rowstore.ColorOpen,
	record.StatusPause: rowstore.ColorPause,
	record.StatusOT:    rowstore.ColorOT,
	record.StatusClose: rowstore.ColorClose,
}

func (e *Engine) highlight(ctx context.Context, rowID int, s record.Status) {
	f, ok := e.store.(rowstore.Formatter)
	if !ok {
		return
	}
	if err := f.Highlight(ctx, rowID, statusColors[s]); err != nil {
		e.log.Warn("row highlight failed", "row", rowID, "status", s, "error", err)
	}
}

func (e *Engine) mutated() {
	if e.onMutate != nil {
		e.onMutate()
	}
}

// observe is deferred by every command; err must point at the command's
// named return so the final value is read.
func (e *Engine) observe(cmd record.Command, start time.Time, err *error) {
	result := "ok"
	if *err != nil {
		result = "error"
	}
	e.metrics.ObserveCommand(string(cmd), result, time.Since(start).Seconds())
}

func (e *Engine) workEnd(processName string) calendar.Clock {
	return e.customWorkEnd[normalize.String(processName)]
}

func (e *Engine) quantified(processName string) bool {
	return !e.nonQuantified[normalize.String(processName)]
}
