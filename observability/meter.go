package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the processing pipeline. A nil
// *Metrics records nothing.
type Metrics struct {
	jobTotal      metric.Int64Counter
	jobDuration   metric.Float64Histogram
	jobActive     metric.Int64UpDownCounter
	stageDuration metric.Float64Histogram
	chunkTotal    metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobTotal, err := meter.Int64Counter("jobs.total",
		metric.WithDescription("Processed video requests by mode and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.total counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("jobs.duration",
		metric.WithDescription("Duration of video requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.duration histogram: %w", err)
	}

	jobActive, err := meter.Int64UpDownCounter("jobs.active",
		metric.WithDescription("Number of requests currently processing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.active gauge: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.duration histogram: %w", err)
	}

	chunkTotal, err := meter.Int64Counter("chunks.total",
		metric.WithDescription("Audio chunks sent for transcription"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chunks.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("errors.total",
		metric.WithDescription("Errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating errors.total counter: %w", err)
	}

	return &Metrics{
		jobTotal:      jobTotal,
		jobDuration:   jobDuration,
		jobActive:     jobActive,
		stageDuration: stageDuration,
		chunkTotal:    chunkTotal,
		errorTotal:    errorTotal,
	}, nil
}

// RecordJobStart increments the active job count.
func (m *Metrics) RecordJobStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, 1)
}

// RecordJobEnd decrements active jobs and records the completed job.
func (m *Metrics) RecordJobEnd(ctx context.Context, mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, -1)
	m.jobTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordChunks counts chunks produced for one request.
func (m *Metrics) RecordChunks(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.chunkTotal.Add(ctx, int64(n))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
