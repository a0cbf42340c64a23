// Package observability provides OpenTelemetry tracing and metrics for the
// processing pipeline.
//
// Setup installs OTLP HTTP exporters when enabled; otherwise the global noop
// providers stay in place and spans and instruments cost nothing:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Identity{Service: "clipscribe", Version: version.Version})
//	defer shutdown(ctx)
//
// Per request:
//
//	oc := observability.NewOperationContext(req.ID, req.ChatID, mode, metrics)
//	ctx, span := oc.Start(ctx)
//	err := oc.Stage(ctx, observability.SpanExtract, "extract", extractFn)
//	oc.End(ctx, span, code, err)
package observability
