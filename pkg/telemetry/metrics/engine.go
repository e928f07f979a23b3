package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks backend health and engine selection.
//
// Metrics:
//   - headsup_engine_up: backend status (1=running, 0=failed)
//   - headsup_engine_errors_total: backend failures by type
//   - headsup_engine_selections_total: selector decisions per engine
//   - headsup_engine_switches_total: changes of the active engine
type EngineMetrics struct {
	up         *prometheus.GaugeVec
	errors     *prometheus.CounterVec
	selections *prometheus.CounterVec
	switches   prometheus.Counter
}

// NewEngineMetrics creates and registers engine metrics with the provided registry.
func NewEngineMetrics(cfg *Config, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		up: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engine_up",
				Help:      "Backend status (1=running, 0=failed)",
			},
			[]string{"engine"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engine_errors_total",
				Help:      "Total number of backend failures by type",
			},
			[]string{"engine", "error_type"},
		),

		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engine_selections_total",
				Help:      "Total number of selector decisions per engine",
			},
			[]string{"engine"},
		),

		switches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engine_switches_total",
				Help:      "Total number of active engine changes",
			},
		),
	}

	registry.MustRegister(
		em.up,
		em.errors,
		em.selections,
		em.switches,
	)

	return em
}

// UpdateUp sets the status of a backend.
func (em *EngineMetrics) UpdateUp(engine string, up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	em.up.WithLabelValues(engine).Set(value)
}

// RecordError records a backend failure.
//
// Error types:
//   - "process_died": the backend exited or its pipes closed
//   - "protocol": the backend broke the protocol or timed out
//   - "other": anything else
func (em *EngineMetrics) RecordError(engine, errorType string) {
	em.errors.WithLabelValues(engine, errorType).Inc()
}

// RecordSelection records a selector decision.
func (em *EngineMetrics) RecordSelection(engine string, changed bool) {
	em.selections.WithLabelValues(engine).Inc()
	if changed {
		em.switches.Inc()
	}
}
