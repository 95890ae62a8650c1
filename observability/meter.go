package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/socialauth/logger"
)

// InitMeter creates a meter provider exporting over OTLP HTTP.
// The provider is returned, not installed globally; shut it down on exit.
func InitMeter(ctx context.Context, cfg Config, svc Service, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	logger.OrNop(log).Debug("meter initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Metrics holds the login instruments.
type Metrics struct {
	attemptTotal    metric.Int64Counter
	attemptDuration metric.Float64Histogram
	attemptActive   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates the login instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	attemptTotal, err := meter.Int64Counter("socialauth.login.attempts",
		metric.WithDescription("Login attempts by login type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating socialauth.login.attempts counter: %w", err)
	}

	attemptDuration, err := meter.Float64Histogram("socialauth.login.duration",
		metric.WithDescription("Duration of login attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating socialauth.login.duration histogram: %w", err)
	}

	attemptActive, err := meter.Int64UpDownCounter("socialauth.login.active",
		metric.WithDescription("Login attempts in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating socialauth.login.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("socialauth.login.errors",
		metric.WithDescription("Login errors by error code and step"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating socialauth.login.errors counter: %w", err)
	}

	return &Metrics{
		attemptTotal:    attemptTotal,
		attemptDuration: attemptDuration,
		attemptActive:   attemptActive,
		errorTotal:      errorTotal,
	}, nil
}

// RecordAttemptStart increments the in-flight count.
func (m *Metrics) RecordAttemptStart(ctx context.Context) {
	m.attemptActive.Add(ctx, 1)
}

// RecordAttemptEnd decrements the in-flight count and records the outcome.
func (m *Metrics) RecordAttemptEnd(ctx context.Context, loginType, outcome string, duration time.Duration) {
	m.attemptActive.Add(ctx, -1)
	m.attemptTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("login_type", loginType),
		attribute.String("outcome", outcome),
	))
	m.attemptDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("login_type", loginType),
	))
}

// RecordError records an error by code and the step that produced it.
func (m *Metrics) RecordError(ctx context.Context, code, step string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("step", step),
	))
}
