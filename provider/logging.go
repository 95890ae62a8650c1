package provider

import (
	"context"
	"time"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirect"
)

// WithLogging logs every network-facing adapter call with its duration.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Adapter) Adapter {
		return &loggingAdapter{inner: inner, log: logger.OrNop(log).WithComponent("provider")}
	}
}

type loggingAdapter struct {
	inner Adapter
	log   *logger.Logger
}

func (l *loggingAdapter) LoginType() LoginType { return l.inner.LoginType() }

func (l *loggingAdapter) AuthURL(ctx context.Context, req AuthRequest) (string, error) {
	start := time.Now()
	u, err := l.inner.AuthURL(ctx, req)
	l.done("auth_url", start, err)
	return u, err
}

func (l *loggingAdapter) NormalizeRedirectParams(ctx context.Context, p redirect.Params) (redirect.Params, error) {
	start := time.Now()
	out, err := l.inner.NormalizeRedirectParams(ctx, p)
	l.done("normalize", start, err)
	return out, err
}

func (l *loggingAdapter) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	start := time.Now()
	info, err := l.inner.UserInfo(ctx, accessToken)
	l.done("user_info", start, err)
	return info, err
}

func (l *loggingAdapter) Cleanup(ctx context.Context) error {
	start := time.Now()
	err := l.inner.Cleanup(ctx)
	l.done("cleanup", start, err)
	return err
}

func (l *loggingAdapter) done(op string, start time.Time, err error) {
	fields := map[string]interface{}{
		logger.FieldLoginType: string(l.inner.LoginType()),
		logger.FieldOperation: op,
		logger.FieldDuration:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Error("provider call failed", fields)
		return
	}
	l.log.Debug("provider call ok", fields)
}
