// Package logger builds *slog.Logger instances from functional options and
// provides attribute helpers that keep key names consistent across packages.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "flagd"),
//	    logger.WithContextExtractors(requestIDFromContext),
//	)
//	log.Info("config reloaded", logger.Resource("flags"), logger.Duration(elapsed))
//
// Helpers such as Error and UserID return an empty slog.Attr for zero input, so
// they can be passed unconditionally.
package logger
