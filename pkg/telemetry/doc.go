// Package telemetry groups the observability of the adapter.
//
// # Components
//
//   - logging: slog logger writing to the log file, never to stdout
//   - metrics: Prometheus collector fed by search reports
//   - tracing: OpenTelemetry span per search, exported over OTLP gRPC
//   - health: liveness and readiness probes next to /metrics
//
// Metrics and tracing implement engine.Observer and are combined with the
// search journal through engine.MultiObserver:
//
//	observers := engine.MultiObserver{collector, tracer, recorder}
//	opts.Observer = observers
//
// Standard output carries the UCI protocol, so every component here writes
// to a file, a socket or nowhere.
package telemetry
