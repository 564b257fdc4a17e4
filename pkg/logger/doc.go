// Package logger builds *slog.Logger instances for the task queue and its
// binaries and keeps attribute names consistent across them.
//
// New applies Option values (format, level, static attributes, environment
// presets, context extractors) and wraps the chosen slog handler with
// LogHandlerDecorator, which injects attributes pulled from context.Context at
// log time. The queue stores the draining worker index in context, so
// registering WorkerIDExtractor tags every record emitted during ProcessAll with
// worker_id.
//
// Attribute helpers (ItemID, Tier, ErrorKind, RetryCount, Delay, ...) live in
// attr.go.
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "queued"),
//	    logger.WithContextExtractors(logger.WorkerIDExtractor),
//	)
//	log.Warn("retry scheduled", logger.ItemID(id), logger.Delay(3*time.Second))
package logger
