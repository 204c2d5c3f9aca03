// Package sweep schedules the daily overtime cutoff sweep. The factory's
// overtime window ends at a fixed clock time, so one cron entry right after
// the cutoff closes any session an operator forgot to stop.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// DefaultSchedule fires right at the overtime cutoff, every day; the sweep
// itself is idempotent, so an extra firing on a non-working day is harmless.
const DefaultSchedule = "30 22 * * *"

// Func is the sweep callback. It reports how many overtime sessions were
// force-closed.
type Func func(ctx context.Context) (int, error)

// cronParser supports standard 5-field cron and descriptors like "@every 1h".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// Sweeper runs the sweep on a cron schedule in the factory's time zone.
type Sweeper struct {
	cron *cronlib.Cron
	fn   Func
	log  *slog.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) { s.log = l }
}

// New creates a Sweeper firing fn per schedule in loc. An empty schedule
// uses DefaultSchedule.
func New(schedule string, loc *time.Location, fn Func, opts ...Option) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Sweeper{fn: fn, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cronlib.New(cronlib.WithParser(cronParser), cronlib.WithLocation(loc))
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("sweep: bad schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stopped, err := s.fn(ctx)
	if err != nil {
		s.log.Error("overtime sweep failed", "stopped", stopped, "error", err)
		return
	}
	if stopped > 0 {
		s.log.Info("overtime sweep done", "stopped", stopped)
	}
}

// Start begins firing on schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("overtime sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("overtime sweeper stopped")
}
