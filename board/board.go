// Package board is the dashboard read surface: active-job listing, a cheap
// change fingerprint for polling clients, and a short-TTL cache over both.
//
// Reads fail soft. A store error dims the dashboard (empty result, logged)
// instead of breaking its polling loop; writes elsewhere stay fail-loud.
package board

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tpt-cnclog/mfg-dashboard/metrics"
	"github.com/tpt-cnclog/mfg-dashboard/record"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
)

// versionPrefixRows bounds how many rows feed the fingerprint. The row count
// catches appends; hashing a bounded prefix of (status, machine) pairs keeps
// the fingerprint cheap on a large grid.
const versionPrefixRows = 10

// DefaultTTL bounds dashboard staleness when no invalidation fires.
const DefaultTTL = 3 * time.Second

// Job is one active job step group as the dashboard renders it. A step
// running on several machines collapses into one entry; Machines and
// Statuses are comma-joined and positionally aligned.
type Job struct {
	LogNo           int    `json:"logNo"`
	ProjectNo       string `json:"projectNo"`
	CustomerName    string `json:"customerName"`
	PartName        string `json:"partName"`
	ProcessName     string `json:"processName"`
	ProcessNo       string `json:"processNo"`
	StepNo          string `json:"stepNo"`
	Machines        string `json:"machines"`
	Statuses        string `json:"statuses"`
	StartTime       string `json:"startTime"`
	PauseSummary    string `json:"pauseSummary"`
	OvertimeSummary string `json:"otSummary"`
}

// Board serves cached reads over the row store.
type Board struct {
	store   rowstore.Store
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics

	mu        sync.Mutex
	jobs      []Job
	jobsAt    time.Time
	version   string
	versionAt time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithTTL sets the cache time-to-live.
func WithTTL(d time.Duration) Option {
	return func(b *Board) { b.ttl = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithClock overrides the time source for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithMetrics attaches cache hit/miss counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Board) { b.metrics = m }
}

// New creates a Board over store.
func New(store rowstore.Store, opts ...Option) *Board {
	b := &Board{
		store: store,
		log:   slog.Default(),
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Invalidate drops the cache so the next read bypasses it. The engine's
// mutation hook calls this, bounding staleness to near zero after writes.
func (b *Board) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobsAt = time.Time{}
	b.versionAt = time.Time{}
}

// ActiveJobs lists active job steps grouped by everything but machine.
// Returns an empty slice on any store error.
func (b *Board) ActiveJobs(ctx context.Context) []Job {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if !b.jobsAt.IsZero() && now.Sub(b.jobsAt) < b.ttl {
		b.metrics.ObserveCache("jobs", true)
		return b.jobs
	}
	b.metrics.ObserveCache("jobs", false)

	rows, err := b.store.ReadAll(ctx)
	if err != nil {
		b.log.Warn("board read failed, serving empty", "error", err)
		return []Job{}
	}

	b.jobs = groupActive(rows)
	b.jobsAt = now
	return b.jobs
}

// Version returns the change fingerprint: xxhash over the row count and a
// bounded prefix of (status, machine) pairs, hex-encoded. Stable across
// reads with no data change; returns the last known value on a store error.
func (b *Board) Version(ctx context.Context) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if !b.versionAt.IsZero() && now.Sub(b.versionAt) < b.ttl {
		b.metrics.ObserveCache("version", true)
		return b.version
	}
	b.metrics.ObserveCache("version", false)

	rows, err := b.store.ReadAll(ctx)
	if err != nil {
		b.log.Warn("board version read failed, serving last known", "error", err)
		return b.version
	}

	b.version = fingerprint(rows)
	b.versionAt = now
	return b.version
}

func cellAt(cells []string, col int) string {
	if col < len(cells) {
		return cells[col]
	}
	return ""
}

// groupActive collapses active rows sharing an identity-minus-machine key
// into one entry, preserving first-seen order.
func groupActive(rows []rowstore.Row) []Job {
	jobs := []Job{}
	index := make(map[record.Identity]int)

	for _, row := range rows {
		status := cellAt(row.Cells, record.ColStatus)
		if !record.Status(status).Active() {
			continue
		}
		machine := cellAt(row.Cells, record.ColMachineNo)
		key := record.Identity{
			ProjectNo:   cellAt(row.Cells, record.ColProjectNo),
			PartName:    cellAt(row.Cells, record.ColPartName),
			ProcessName: cellAt(row.Cells, record.ColProcessName),
			ProcessNo:   cellAt(row.Cells, record.ColProcessNo),
			StepNo:      cellAt(row.Cells, record.ColStepNo),
		}.Key()

		if i, ok := index[key]; ok {
			jobs[i].Machines += "," + machine
			jobs[i].Statuses += "," + status
			continue
		}

		logNo, _ := strconv.Atoi(cellAt(row.Cells, record.ColLogNo))
		index[key] = len(jobs)
		jobs = append(jobs, Job{
			LogNo:           logNo,
			ProjectNo:       cellAt(row.Cells, record.ColProjectNo),
			CustomerName:    cellAt(row.Cells, record.ColCustomerName),
			PartName:        cellAt(row.Cells, record.ColPartName),
			ProcessName:     cellAt(row.Cells, record.ColProcessName),
			ProcessNo:       cellAt(row.Cells, record.ColProcessNo),
			StepNo:          cellAt(row.Cells, record.ColStepNo),
			Machines:        machine,
			Statuses:        status,
			StartTime:       cellAt(row.Cells, record.ColStartTime),
			PauseSummary:    cellAt(row.Cells, record.ColPauseSummary),
			OvertimeSummary: cellAt(row.Cells, record.ColOvertimeSummary),
		})
	}
	return jobs
}

func fingerprint(rows []rowstore.Row) string {
	h := xxhash.New()
	h.WriteString(strconv.Itoa(len(rows)))

	n := len(rows)
	if n > versionPrefixRows {
		n = versionPrefixRows
	}
	for _, row := range rows[:n] {
		h.WriteString("|")
		h.WriteString(cellAt(row.Cells, record.ColStatus))
		h.WriteString(":")
		h.WriteString(cellAt(row.Cells, record.ColMachineNo))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
