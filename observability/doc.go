// Package observability sets up OpenTelemetry tracing and metrics for the
// login flow.
//
// Providers are built from Config and handed to the SDK explicitly; nothing
// is installed on the otel globals.
//
//	tel, err := observability.Setup(ctx, cfg.Telemetry, observability.Service{Name: "socialauth"}, log)
//	defer tel.Shutdown(context.Background())
//
//	ctx, attempt := tel.StartAttempt(ctx, id, "google", "popup")
//	stepCtx, span := attempt.StartStep(ctx, observability.SpanFetchUserInfo)
//	attempt.EndStep(stepCtx, span, "fetch_user_info", "", err)
//	attempt.End(ctx, observability.OutcomeCommitted, nil)
package observability
