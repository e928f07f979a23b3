package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics tracks searches delegated to the backends.
//
// Metrics:
//   - headsup_searches_total: searches by engine, mode and outcome
//   - headsup_search_duration_seconds: search duration histogram
//   - headsup_search_info_lines_total: info lines relayed from backends
//   - headsup_searches_in_flight: searches currently running per engine
type SearchMetrics struct {
	searchesTotal  *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	infoLines      *prometheus.CounterVec
	inFlight       *prometheus.GaugeVec
}

// NewSearchMetrics creates and registers search metrics with the provided registry.
func NewSearchMetrics(cfg *Config, registry *prometheus.Registry) *SearchMetrics {
	sm := &SearchMetrics{
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "searches_total",
				Help:      "Total number of searches by engine, mode and outcome",
			},
			[]string{"engine", "mode", "outcome"},
		),

		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "search_duration_seconds",
				Help:      "Duration of searches in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"engine"},
		),

		infoLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "search_info_lines_total",
				Help:      "Total number of info lines relayed from backends",
			},
			[]string{"engine"},
		),

		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "searches_in_flight",
				Help:      "Searches currently running per engine",
			},
			[]string{"engine"},
		),
	}

	registry.MustRegister(
		sm.searchesTotal,
		sm.searchDuration,
		sm.infoLines,
		sm.inFlight,
	)

	return sm
}

// RecordStart marks a search as running on engine.
func (sm *SearchMetrics) RecordStart(engine string) {
	sm.inFlight.WithLabelValues(engine).Inc()
}

// RecordFinish records a finished search.
func (sm *SearchMetrics) RecordFinish(engine, mode, outcome string, duration time.Duration, infoLines int) {
	sm.inFlight.WithLabelValues(engine).Dec()
	sm.searchesTotal.WithLabelValues(engine, mode, outcome).Inc()
	if duration > 0 {
		sm.searchDuration.WithLabelValues(engine).Observe(duration.Seconds())
	}
	if infoLines > 0 {
		sm.infoLines.WithLabelValues(engine).Add(float64(infoLines))
	}
}
