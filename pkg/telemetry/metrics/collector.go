package metrics

import (
	"errors"

	"headsup-hq/headsup/pkg/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls the collector.
type Config struct {
	// Enabled turns recording on. A disabled collector still serves an
	// empty registry.
	Enabled bool

	// Namespace prefixes every metric name. Defaults to "headsup".
	Namespace string

	// Subsystem is the optional second name component.
	Subsystem string

	// DurationBuckets are the search duration histogram buckets in seconds.
	DurationBuckets []float64
}

// Collector owns the Prometheus registry of the adapter. It implements
// engine.Observer so supervisors can report searches to it directly.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	searchMetrics *SearchMetrics
	engineMetrics *EngineMetrics
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector with the specified configuration and
// registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "headsup"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Searches run from a few milliseconds (fixed depth) to minutes (analysis).
		cfg.DurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.searchMetrics = NewSearchMetrics(cfg, registry)
	c.engineMetrics = NewEngineMetrics(cfg, registry)

	return c
}

// SearchStarted implements engine.Observer.
func (c *Collector) SearchStarted(report engine.SearchReport) {
	if !c.config.Enabled {
		return
	}
	c.searchMetrics.RecordStart(report.Engine)
}

// SearchFinished implements engine.Observer.
func (c *Collector) SearchFinished(report engine.SearchReport) {
	if !c.config.Enabled {
		return
	}
	c.searchMetrics.RecordFinish(report.Engine, report.Mode, string(report.Outcome), report.Duration, report.InfoLines)
}

// BackendFailed implements engine.Observer.
func (c *Collector) BackendFailed(name string, err error) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.UpdateUp(name, false)
	c.engineMetrics.RecordError(name, errorType(err))
}

// MarkUp records that a backend completed its handshake.
func (c *Collector) MarkUp(name string) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.UpdateUp(name, true)
}

// RecordSelection records a selector decision for the engine labelled name.
func (c *Collector) RecordSelection(name string, changed bool) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordSelection(name, changed)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func errorType(err error) string {
	switch {
	case errors.Is(err, engine.ErrBackendProcessDied):
		return "process_died"
	case errors.Is(err, engine.ErrBackendProtocolViolation):
		return "protocol"
	default:
		return "other"
	}
}
