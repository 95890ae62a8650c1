package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Outcomes recorded for an attempt.
const (
	OutcomeCommitted  = "committed"
	OutcomeCached     = "cached"
	OutcomeRedirected = "redirected"
	OutcomeErrored    = "errored"
)

// Attempt tracks the telemetry of one login attempt: a root span, one
// child span per step and the attempt metrics.
type Attempt struct {
	ID        string
	LoginType string
	UXMode    string
	StartTime time.Time

	tracer  trace.Tracer
	metrics *Metrics
	span    trace.Span
}

// StartAttempt opens the root span of an attempt.
func (t *Telemetry) StartAttempt(ctx context.Context, id, loginType, uxMode string) (context.Context, *Attempt) {
	a := &Attempt{
		ID:        id,
		LoginType: loginType,
		UXMode:    uxMode,
		StartTime: time.Now(),
		tracer:    t.Tracer,
		metrics:   t.Metrics,
	}
	ctx, a.span = t.Tracer.Start(ctx, SpanLogin, trace.WithAttributes(
		attribute.String(AttrAttemptID, id),
		attribute.String(AttrLoginType, loginType),
		attribute.String(AttrUXMode, uxMode),
	))
	if a.metrics != nil {
		a.metrics.RecordAttemptStart(ctx)
	}
	return ctx, a
}

// StartStep opens a child span for one step of the attempt.
func (a *Attempt) StartStep(ctx context.Context, name string) (context.Context, trace.Span) {
	return a.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String(AttrLoginType, a.LoginType),
	))
}

// EndStep closes a step span, recording err and counting it against step.
func (a *Attempt) EndStep(ctx context.Context, span trace.Span, step, code string, err error) {
	if err != nil {
		SetSpanError(span, err)
		if code != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, code))
		}
		if a.metrics != nil {
			a.metrics.RecordError(ctx, code, step)
		}
	}
	span.End()
}

// End closes the root span and records the attempt outcome.
func (a *Attempt) End(ctx context.Context, outcome string, err error) {
	duration := time.Since(a.StartTime)
	SetSpanError(a.span, err)
	a.span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	a.span.End()

	if a.metrics != nil {
		a.metrics.RecordAttemptEnd(ctx, a.LoginType, outcome, duration)
	}
}
