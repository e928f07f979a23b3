package tracing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"

	"headsup-hq/headsup/pkg/engine"
)

const instrumentationName = "headsup-hq/headsup"

// Config configures the tracer.
type Config struct {
	// Enabled turns span export on. A disabled tracer ignores every event.
	Enabled bool

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string

	// Insecure disables TLS towards the collector.
	Insecure bool

	// Timeout bounds a single export.
	Timeout time.Duration

	// Sampler is "always", "never" or "ratio".
	Sampler string

	// SampleRatio is used by the ratio sampler.
	SampleRatio float64

	// ServiceName and ServiceVersion describe the process.
	ServiceName    string
	ServiceVersion string
}

// Tracer turns search reports into OpenTelemetry spans. It implements
// engine.Observer: a span starts with SearchStarted and ends with the
// matching SearchFinished.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool

	mu    sync.Mutex
	spans map[string]trace.Span
}

var _ engine.Observer = (*Tracer)(nil)

// New creates a tracer exporting over OTLP gRPC. The exporter connects
// lazily, so a missing collector does not fail startup.
//
// The tracer must be shut down to flush pending spans:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg Config) (*Tracer, error) {
	if !cfg.Enabled {
		return &Tracer{
			tracer: noop.NewTracerProvider().Tracer(instrumentationName),
			spans:  make(map[string]trace.Span),
		}, nil
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, err
	}
	return newTracer(cfg, sdktrace.WithBatcher(exporter))
}

func newTracer(cfg Config, export sdktrace.TracerProviderOption) (*Tracer, error) {
	sampler, err := createSampler(cfg.Sampler, cfg.SampleRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "headsup"
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
		spans:    make(map[string]trace.Span),
	}, nil
}

func createOTLPExporter(cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// Enabled returns whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// SearchStarted opens the span of a search.
func (t *Tracer) SearchStarted(r engine.SearchReport) {
	if !t.enabled {
		return
	}
	_, span := t.tracer.Start(context.Background(), "search "+r.Engine,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(r.StartedAt),
		trace.WithAttributes(startAttributes(r)...),
	)

	t.mu.Lock()
	t.spans[r.ID] = span
	t.mu.Unlock()
}

// SearchFinished closes the span of a search. A report without a started
// span gets a span covering its whole duration.
func (t *Tracer) SearchFinished(r engine.SearchReport) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	span, ok := t.spans[r.ID]
	delete(t.spans, r.ID)
	t.mu.Unlock()

	if !ok {
		_, span = t.tracer.Start(context.Background(), "search "+r.Engine,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithTimestamp(r.StartedAt),
			trace.WithAttributes(startAttributes(r)...),
		)
	}

	span.SetAttributes(finishAttributes(r)...)
	if r.Outcome == engine.OutcomeFailed {
		SetStatus(span, errors.New(r.Error))
		span.RecordError(errors.New(r.Error))
	} else {
		SetStatus(span, nil)
	}
	span.End(trace.WithTimestamp(r.StartedAt.Add(r.Duration)))
}

// BackendFailed records a zero-length error span for the failing backend.
func (t *Tracer) BackendFailed(name string, err error) {
	if !t.enabled {
		return
	}
	_, span := t.tracer.Start(context.Background(), "engine failure",
		trace.WithAttributes(attribute.String(AttrEngine, name)),
	)
	span.RecordError(err)
	SetStatus(span, err)
	span.End()
}

// Shutdown ends the spans still open and flushes the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	for id, span := range t.spans {
		span.SetStatus(codes.Error, "search still running at shutdown")
		span.End()
		delete(t.spans, id)
	}
	t.mu.Unlock()

	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// SetStatus sets the span status from err: Ok when nil, Error otherwise.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
