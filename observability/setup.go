package observability

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/clipscribe/logger"
)

// Shutdown flushes and stops the exporters started by Setup.
type Shutdown func(ctx context.Context) error

// Setup installs OTLP meter and tracer providers when cfg.Enabled. When
// disabled the global noop providers stay in place and Shutdown does nothing.
func Setup(ctx context.Context, cfg Config, id Identity) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	cfg.ApplyDefaults()

	res, err := id.resource()
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	logger.Info("telemetry export enabled", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
		"sample_rate", cfg.SampleRate,
	))

	return func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
