// Package health serves the liveness and readiness probes of the adapter.
//
// The endpoints share the metrics listener:
//
//   - /health: the process is running
//   - /ready: every registered check passes (each backend engine is alive)
//   - /version: build information
//
// Usage:
//
//	checker := health.New(time.Second)
//	checker.RegisterCheck("engine1", func(ctx context.Context) error {
//	    return supervisor.Err()
//	})
//	checker.Mount(mux, "1.0.0", "abc123", "2026-10-01")
//
// A failing check turns /ready into 503 with the failing component and its
// error in the body. Liveness never runs the checks.
package health
