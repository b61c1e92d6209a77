// Package httpserver runs an http.Server tied to a context and provides
// liveness and readiness handlers.
//
// Run blocks until the context is cancelled, then shuts the server down
// gracefully within Config.ShutdownTimeout:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// Readiness takes named checks and answers 503 while any of them fails,
// which makes it suitable for gating traffic until the first flag config has
// been loaded.
package httpserver
