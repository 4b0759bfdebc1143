// Package httpserver runs the idvault HTTP API with graceful shutdown.
//
// Run binds the listener before any start hook fires, so Addr is valid from
// the hooks on. It blocks until ctx is cancelled, SIGINT or SIGTERM arrives,
// or Shutdown is called, then drains in-flight requests for at most the
// shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("http server", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler back the /healthz and /readyz probes.
package httpserver
