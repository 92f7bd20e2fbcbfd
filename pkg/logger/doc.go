// Package logger builds the service's slog logger: JSON to stdout,
// optionally mirrored to Sentry, with request-scoped attributes pulled
// from the context on every call.
//
//	log, flush := logger.New(cfg, middlewares.RequestIDExtractor(), middlewares.UserIDExtractor())
//	defer flush()
//	log.InfoContext(ctx, "article created", slog.String("slug", a.Slug))
//	// {"level":"INFO","msg":"article created","slug":"hello","request_id":"01J...","user_id":"..."}
package logger
