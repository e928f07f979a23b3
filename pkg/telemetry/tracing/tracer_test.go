package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"headsup-hq/headsup/pkg/engine"
)

func newTestTracer(t *testing.T, cfg Config) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := newTracer(cfg, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("newTracer() error = %v", err)
	}
	t.Cleanup(func() { tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func report(id string) engine.SearchReport {
	return engine.SearchReport{
		ID:         id,
		Engine:     "engine2",
		EngineName: "Beta",
		Mode:       "clock",
		FEN:        "8/8/4k3/8/8/4K3/4P3/8 w - - 0 60",
		FullMove:   60,
		Material:   1,
		StartedAt:  time.Now().Add(-time.Second),
	}
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	r := report("x")
	tracer.SearchStarted(r)
	tracer.SearchFinished(r)
	tracer.BackendFailed("engine1", errors.New("boom"))
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_InvalidSampler(t *testing.T) {
	_, err := newTracer(Config{Enabled: true, Sampler: "sometimes"}, sdktrace.WithSyncer(tracetest.NewInMemoryExporter()))
	if err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestNew_OTLPExporter(t *testing.T) {
	tracer, err := New(Config{
		Enabled:  true,
		Endpoint: "127.0.0.1:4317",
		Insecure: true,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !tracer.Enabled() {
		t.Error("expected enabled tracer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tracer.Shutdown(ctx)
}

func TestTracer_CompletedSearch(t *testing.T) {
	tracer, exporter := newTestTracer(t, Config{Enabled: true})

	r := report("s1")
	tracer.SearchStarted(r)
	if n := len(exporter.GetSpans()); n != 0 {
		t.Fatalf("span exported before the search finished: %d", n)
	}

	r.BestMove, r.Ponder, r.InfoLines = "e2e3", "e6d6", 7
	r.Outcome = engine.OutcomeCompleted
	r.Duration = 250 * time.Millisecond
	tracer.SearchFinished(r)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "search engine2" {
		t.Errorf("span name = %q", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status.Code)
	}
	if got := span.EndTime.Sub(span.StartTime); got != r.Duration {
		t.Errorf("span duration = %v, want %v", got, r.Duration)
	}

	checks := map[string]attribute.Value{
		AttrEngineName: attribute.StringValue("Beta"),
		AttrFullMove:   attribute.IntValue(60),
		AttrMaterial:   attribute.IntValue(1),
		AttrBestMove:   attribute.StringValue("e2e3"),
		AttrPonder:     attribute.StringValue("e6d6"),
		AttrInfoLines:  attribute.IntValue(7),
		AttrOutcome:    attribute.StringValue("completed"),
	}
	for key, want := range checks {
		got, ok := attrValue(span.Attributes, key)
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", key, got.Emit(), want.Emit())
		}
	}
}

func TestTracer_FailedSearch(t *testing.T) {
	tracer, exporter := newTestTracer(t, Config{Enabled: true})

	r := report("s2")
	tracer.SearchStarted(r)
	r.Outcome = engine.OutcomeFailed
	r.Error = "engine2 process exited"
	tracer.SearchFinished(r)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error || spans[0].Status.Description != r.Error {
		t.Errorf("unexpected status %+v", spans[0].Status)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestTracer_FinishWithoutStart(t *testing.T) {
	tracer, exporter := newTestTracer(t, Config{Enabled: true})

	r := report("s3")
	r.Outcome = engine.OutcomeStopped
	tracer.SearchFinished(r)

	if n := len(exporter.GetSpans()); n != 1 {
		t.Fatalf("expected 1 span, got %d", n)
	}
}

func TestTracer_BackendFailed(t *testing.T) {
	tracer, exporter := newTestTracer(t, Config{Enabled: true})

	tracer.BackendFailed("engine1", errors.New("broken pipe"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "engine failure" || spans[0].Status.Code != codes.Error {
		t.Errorf("unexpected span %s %+v", spans[0].Name, spans[0].Status)
	}
}

func TestTracer_ShutdownEndsOpenSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := newTracer(Config{Enabled: true}, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatal(err)
	}

	tracer.SearchStarted(report("s4"))
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Errorf("expected the open search to end with an error status, got %+v", spans)
	}
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newTestTracer(t, Config{Enabled: true, Sampler: SamplerNever})

	r := report("s5")
	tracer.SearchStarted(r)
	r.Outcome = engine.OutcomeCompleted
	tracer.SearchFinished(r)

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no sampled spans, got %d", n)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{"default", "", 0, false},
		{"always", SamplerAlways, 0, false},
		{"never", SamplerNever, 0, false},
		{"ratio 50%", SamplerRatio, 0.5, false},
		{"ratio negative", SamplerRatio, -0.1, true},
		{"ratio above one", SamplerRatio, 1.5, true},
		{"unknown", "unknown", 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("expected non-nil sampler")
			}
		})
	}
}
