package errors

import (
	"context"

	"github.com/kbukum/socialauth/logger"
)

// Reporter receives errors that ended a login attempt.
// Implementations forward them to an exception tracker.
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, err error, tags map[string]string)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, err error, tags map[string]string) {
	f(ctx, err, tags)
}

// NopReporter discards every report.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(context.Context, error, map[string]string) {}

// LogReporter writes reports to a logger at error level.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter creates a Reporter backed by log.
func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{log: log.WithComponent("reporter")}
}

// Report logs err with its code and tags.
func (r *LogReporter) Report(ctx context.Context, err error, tags map[string]string) {
	fields := map[string]interface{}{}
	for k, v := range tags {
		fields[k] = v
	}
	if appErr, ok := AsAppError(err); ok {
		fields["code"] = string(appErr.Code)
	}
	r.log.WithContext(ctx).WithError(err).Error("login attempt failed", fields)
}
