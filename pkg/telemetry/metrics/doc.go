// Package metrics provides Prometheus metrics for the adapter.
//
// # Metrics Categories
//
//   - Search Metrics: searches by engine, mode and outcome, durations,
//     relayed info lines, searches in flight
//   - Engine Metrics: backend status, failures by type, selector decisions
//     and active engine switches
//
// # Usage
//
//	collector := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
//
//	// Supervisors report searches through engine.Observer.
//	opts := engine.DefaultOptions("engine1")
//	opts.Observer = collector
//
//	// The router reports selections.
//	routerOpts.OnSelect = func(sel router.Selection) {
//		collector.RecordSelection(sel.Backend.String(), sel.Changed)
//	}
//
// # Prometheus Endpoint
//
// When metrics.listen_address is set, the collector is served over HTTP:
//
//	# HELP headsup_searches_total Total number of searches by engine, mode and outcome
//	# TYPE headsup_searches_total counter
//	headsup_searches_total{engine="engine2",mode="clock",outcome="completed"} 42
package metrics
