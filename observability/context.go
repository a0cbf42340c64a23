package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OperationContext holds observability context for one processing request.
type OperationContext struct {
	RequestID string
	ChatID    int64
	Mode      string
	StartTime time.Time
	Metrics   *Metrics
}

// NewOperationContext creates a new operation context.
// If metrics is nil, metric recording is silently skipped.
func NewOperationContext(requestID string, chatID int64, mode string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		RequestID: requestID,
		ChatID:    chatID,
		Mode:      mode,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// operationContextKey is the context key for OperationContext.
type operationContextKey struct{}

// WithOperationContext stores an OperationContext in the context.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext retrieves the OperationContext from context, or nil.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	if oc, ok := ctx.Value(operationContextKey{}).(*OperationContext); ok {
		return oc
	}
	return nil
}

// Start opens the request span and records the job start metric. The
// returned context carries both the span and oc.
func (oc *OperationContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(WithOperationContext(ctx, oc), SpanJobProcess)
	span.SetAttributes(
		attribute.String(AttrRequestID, oc.RequestID),
		attribute.Int64(AttrChatID, oc.ChatID),
		attribute.String(AttrMode, oc.Mode),
	)
	oc.Metrics.RecordJobStart(ctx)
	return ctx, span
}

// End ends the span and records the job outcome. code is the error code
// of a failed job, empty on success.
func (oc *OperationContext) End(ctx context.Context, span trace.Span, code string, err error) {
	duration := time.Since(oc.StartTime)
	status := "ok"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetAttributes(
			attribute.String(AttrErrorCode, code),
			attribute.String(AttrErrorMessage, err.Error()),
		)
		oc.Metrics.RecordError(ctx, code, "job")
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	oc.Metrics.RecordJobEnd(ctx, oc.Mode, status, duration)
}

// Stage runs fn inside a child span named name and records its duration
// as a stage metric.
func (oc *OperationContext) Stage(ctx context.Context, name, stage string, fn func(ctx context.Context) error) error {
	ctx, span := StartSpan(ctx, name)
	defer span.End()
	span.SetAttributes(attribute.String(AttrStage, stage))

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "failed"
		SetSpanError(ctx, err)
	}
	oc.Metrics.RecordStage(ctx, stage, status, time.Since(start))
	return err
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
