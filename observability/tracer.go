package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/socialauth/logger"
)

// InstrumentationName names the SDK's tracer and meter.
const InstrumentationName = "github.com/kbukum/socialauth"

// Service identifies the process in exported telemetry.
type Service struct {
	Name        string
	Version     string
	Environment string
}

// InitTracer creates a tracer provider exporting over OTLP HTTP.
// The provider is returned, not installed globally; shut it down on exit.
func InitTracer(ctx context.Context, cfg Config, svc Service, log *logger.Logger) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	logger.OrNop(log).Debug("tracer initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// newResource describes the service. The attributes are schemaless so they
// merge with the SDK default resource whatever its schema version.
func newResource(svc Service) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(svc.Name),
			semconv.ServiceVersion(svc.Version),
			attribute.String("environment", svc.Environment),
		),
	)
}

// SetSpanError records err on span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if span == nil || err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
}

// Span names of a login attempt.
const (
	SpanLogin          = "socialauth.login"
	SpanAwaitResponse  = "socialauth.await_response"
	SpanValidateState  = "socialauth.validate_state"
	SpanFetchUserInfo  = "socialauth.fetch_user_info"
	SpanReconstructKey = "socialauth.reconstruct_key"
	SpanRedirectResume = "socialauth.redirect_resume"
)

// Common attribute keys.
const (
	AttrLoginType    = "login.type"
	AttrUXMode       = "login.ux_mode"
	AttrAttemptID    = "login.attempt_id"
	AttrOutcome      = "login.outcome"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
	AttrDurationMs   = "duration_ms"
)
