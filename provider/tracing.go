package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/redirect"
)

// WithTracing opens a span named "provider.{login type}.{operation}"
// around every adapter call.
func WithTracing(tracer trace.Tracer) Middleware {
	return func(inner Adapter) Adapter {
		return &tracingAdapter{inner: inner, tracer: tracer}
	}
}

type tracingAdapter struct {
	inner  Adapter
	tracer trace.Tracer
}

func (t *tracingAdapter) LoginType() LoginType { return t.inner.LoginType() }

func (t *tracingAdapter) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "provider."+string(t.inner.LoginType())+"."+op,
		trace.WithAttributes(attribute.String(observability.AttrLoginType, string(t.inner.LoginType()))),
	)
}

func (t *tracingAdapter) AuthURL(ctx context.Context, req AuthRequest) (string, error) {
	ctx, span := t.start(ctx, "auth_url")
	defer span.End()
	u, err := t.inner.AuthURL(ctx, req)
	observability.SetSpanError(span, err)
	return u, err
}

func (t *tracingAdapter) NormalizeRedirectParams(ctx context.Context, p redirect.Params) (redirect.Params, error) {
	ctx, span := t.start(ctx, "normalize")
	defer span.End()
	out, err := t.inner.NormalizeRedirectParams(ctx, p)
	observability.SetSpanError(span, err)
	return out, err
}

func (t *tracingAdapter) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	ctx, span := t.start(ctx, "user_info")
	defer span.End()
	info, err := t.inner.UserInfo(ctx, accessToken)
	observability.SetSpanError(span, err)
	return info, err
}

func (t *tracingAdapter) Cleanup(ctx context.Context) error {
	ctx, span := t.start(ctx, "cleanup")
	defer span.End()
	err := t.inner.Cleanup(ctx)
	observability.SetSpanError(span, err)
	return err
}
