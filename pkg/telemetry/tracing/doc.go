// Package tracing exports one OpenTelemetry span per delegated search.
//
// The Tracer is an engine.Observer. Each search becomes a root span named
// after the backend label ("search engine1") carrying the position (FEN,
// full-move number, material), the search mode and, once finished, the best
// move, the number of info lines relayed and the outcome. Failed searches
// and dead backends are recorded as errors.
//
// Spans go to an OTLP gRPC collector:
//
//	tracer, err := tracing.New(tracing.Config{
//	    Enabled:  true,
//	    Endpoint: "localhost:4317",
//	    Insecure: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// A disabled tracer ignores every event.
package tracing
