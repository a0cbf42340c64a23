package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func newRecordingMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum for %s, got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate above 1")
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, Identity{Service: "clipscribe", Version: "dev", Environment: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected noop shutdown, got %v", err)
	}
}

func TestMetrics_RecordsJobLifecycle(t *testing.T) {
	metrics, reader := newRecordingMetrics(t)
	ctx := context.Background()

	metrics.RecordJobStart(ctx)
	metrics.RecordJobEnd(ctx, "audio_only", "ok", 2*time.Second)
	metrics.RecordJobStart(ctx)
	metrics.RecordChunks(ctx, 4)
	metrics.RecordStage(ctx, "extract", "ok", time.Second)
	metrics.RecordError(ctx, "EXTRACTION_FAILED", "job")

	got := collect(t, reader)
	if n := sumOf(t, got["jobs.total"]); n != 1 {
		t.Errorf("expected 1 completed job, got %d", n)
	}
	if n := sumOf(t, got["jobs.active"]); n != 1 {
		t.Errorf("expected 1 active job, got %d", n)
	}
	if n := sumOf(t, got["chunks.total"]); n != 4 {
		t.Errorf("expected 4 chunks, got %d", n)
	}
	if n := sumOf(t, got["errors.total"]); n != 1 {
		t.Errorf("expected 1 error, got %d", n)
	}
	if _, ok := got["stage.duration"]; !ok {
		t.Error("expected stage.duration to be recorded")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()
	metrics.RecordJobStart(ctx)
	metrics.RecordJobEnd(ctx, "both", "ok", time.Second)
	metrics.RecordStage(ctx, "extract", "ok", time.Second)
	metrics.RecordChunks(ctx, 1)
	metrics.RecordError(ctx, "X", "job")
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil || metrics == nil {
		t.Fatalf("expected metrics, got %v", err)
	}
}

func TestOperationContext_SpansAndMetrics(t *testing.T) {
	exporter := installTracer(t)
	metrics, reader := newRecordingMetrics(t)

	oc := NewOperationContext("req-1", 42, "both", metrics)
	ctx, span := oc.Start(context.Background())
	if OperationContextFromContext(ctx) != oc {
		t.Fatal("expected operation context in returned context")
	}
	_ = oc.Stage(ctx, SpanExtract, "extract", func(context.Context) error { return nil })
	stageErr := oc.Stage(ctx, SpanSplit, "split", func(context.Context) error { return fmt.Errorf("boom") })
	if stageErr == nil || stageErr.Error() != "boom" {
		t.Fatalf("expected stage error returned, got %v", stageErr)
	}
	oc.End(ctx, span, "EXTRACTION_FAILED", stageErr)

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	names := map[string]bool{}
	for _, s := range spans {
		names[s.Name] = true
	}
	for _, want := range []string{SpanJobProcess, SpanExtract, SpanSplit} {
		if !names[want] {
			t.Errorf("expected span %q, got %v", want, names)
		}
	}

	got := collect(t, reader)
	if n := sumOf(t, got["jobs.total"]); n != 1 {
		t.Errorf("expected 1 job, got %d", n)
	}
	if n := sumOf(t, got["errors.total"]); n != 1 {
		t.Errorf("expected 1 error, got %d", n)
	}
	if n := sumOf(t, got["jobs.active"]); n != 0 {
		t.Errorf("expected no active jobs, got %d", n)
	}
}

func TestOperationContextFromContext_NotSet(t *testing.T) {
	if OperationContextFromContext(context.Background()) != nil {
		t.Error("expected nil when operation context not set")
	}
}

func TestOperationContext_Duration(t *testing.T) {
	oc := NewOperationContext("req-1", 1, "audio_only", nil)
	oc.StartTime = time.Now().Add(-50 * time.Millisecond)

	duration := oc.Duration()
	if duration < 45*time.Millisecond || duration > 200*time.Millisecond {
		t.Errorf("expected duration around 50ms, got %v", duration)
	}
}

func TestOperationContext_NilMetrics(t *testing.T) {
	oc := NewOperationContext("req-1", 1, "audio_only", nil)
	ctx, span := oc.Start(context.Background())
	oc.End(ctx, span, "", nil)
}

func TestSetSpanError(t *testing.T) {
	exporter := installTracer(t)

	ctx, span := StartSpan(context.Background(), "test-error")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || len(spans[0].Events) != 1 {
		t.Fatalf("expected one span with an error event, got %+v", spans)
	}
}

func TestSetSpanErrorNoSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("no span error"))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"always", 1.0, "root:AlwaysOnSampler"},
		{"above one", 2.0, "root:AlwaysOnSampler"},
		{"never", 0, "root:AlwaysOffSampler"},
		{"ratio", 0.5, "root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sampler(tt.rate).Description(); !strings.Contains(got, tt.want) {
				t.Errorf("expected sampler containing %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSetup_Enabled(t *testing.T) {
	prevMP, prevTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	defer func() {
		otel.SetMeterProvider(prevMP)
		otel.SetTracerProvider(prevTP)
	}()

	cfg := Config{Enabled: true, Insecure: true}
	shutdown, err := Setup(context.Background(), cfg, Identity{Service: "clipscribe", Version: "v1", Environment: "test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
	}
	// nothing listens on the endpoint; don't wait for the final export
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
