package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/clipscribe"

// Pipeline span names.
const (
	SpanJobProcess = "job.process"
	SpanDownload   = "video.download"
	SpanExtract    = "media.extract"
	SpanSplit      = "media.split"
	SpanTranscribe = "transcription.transcribe"
	SpanChunk      = "transcription.chunk"
	SpanFormat     = "transcript.format"
	SpanDeliver    = "result.deliver"
)

// Attribute keys.
const (
	AttrServiceName  = "service.name"
	AttrRequestID    = "request.id"
	AttrChatID       = "chat.id"
	AttrMode         = "mode"
	AttrStage        = "stage"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)

// StartSpan starts a span on the global provider, which is a noop until
// Setup enables export.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// SetSpanError marks the span in ctx as failed.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
