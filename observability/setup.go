package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/socialauth/logger"
)

// Telemetry bundles the tracer and login metrics handed to the SDK.
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *Metrics

	shutdown []func(context.Context) error
}

// Setup builds telemetry from cfg. A disabled config yields no-op
// instruments and a Shutdown that does nothing.
func Setup(ctx context.Context, cfg Config, svc Service, log *logger.Logger) (*Telemetry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return Noop(), nil
	}

	tp, err := InitTracer(ctx, cfg, svc, log)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg, svc, log)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return New(tp.Tracer(InstrumentationName), mp.Meter(InstrumentationName), tp.Shutdown, mp.Shutdown)
}

// New wraps an existing tracer and meter. shutdown functions run in order
// on Shutdown.
func New(tracer trace.Tracer, meter metric.Meter, shutdown ...func(context.Context) error) (*Telemetry, error) {
	metrics, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Telemetry{Tracer: tracer, Meter: meter, Metrics: metrics, shutdown: shutdown}, nil
}

// Noop returns telemetry that records nothing.
func Noop() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	t, _ := New(tracenoop.NewTracerProvider().Tracer(InstrumentationName), meter)
	return t
}

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
