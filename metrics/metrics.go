// Package metrics exposes Prometheus collectors for the job engine and the
// dashboard read surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles all collectors. Construct with New and register the
// reference everywhere; a nil *Metrics is a no-op sink so tests can skip it.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	SweepAutoStops  prometheus.Counter
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cnclog_commands_total",
			Help: "Commands processed, by command and result.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cnclog_command_duration_seconds",
			Help:    "End-to-end command latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		SweepAutoStops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cnclog_sweep_autostops_total",
			Help: "Overtime sessions force-closed by the cutoff sweep.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cnclog_board_cache_hits_total",
			Help: "Board cache hits, by surface.",
		}, []string{"surface"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cnclog_board_cache_misses_total",
			Help: "Board cache misses, by surface.",
		}, []string{"surface"}),
	}
	reg.MustRegister(m.Commands, m.CommandDuration, m.SweepAutoStops, m.CacheHits, m.CacheMisses)
	return m
}

// ObserveCommand records one command outcome. Safe on a nil receiver.
func (m *Metrics) ObserveCommand(command, result string, seconds float64) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, result).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(seconds)
}

// AddSweepAutoStops records n force-closed overtime sessions. Safe on nil.
func (m *Metrics) AddSweepAutoStops(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepAutoStops.Add(float64(n))
}

// ObserveCache records a cache hit or miss for a board surface. Safe on nil.
func (m *Metrics) ObserveCache(surface string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(surface).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(surface).Inc()
}
