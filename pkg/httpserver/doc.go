// Package httpserver runs an http.Handler with graceful shutdown and
// ordered release of process resources.
//
// Run binds the listener, serves until the context is cancelled or
// SIGINT/SIGTERM arrives, drains in-flight requests within the shutdown
// timeout and then runs the shutdown hooks in registration order. The
// server uses the hooks to close every tenant database connection after
// the last request finished.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook("tenant connections", registry.CloseAll),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler back the /health/live and
// /health/ready probes; readiness runs named checks such as the mongo and
// redis pings.
package httpserver
