// Package server provides the chatrelay HTTP server.
//
// The server mounts the call handler, the health endpoints and the
// Prometheus handler on one mux and wraps it in the middleware chain:
//
//	srv, err := server.New(&cfg.Server, server.Dependencies{
//	    CallHandler: callHandler,
//	    Checker:     checker,
//	    Metrics:     collector,
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx) // returns after ctx is cancelled and shutdown completes
//
// # Routes
//
//   - POST /api/call - relay one chat completion and record it
//   - GET /health - liveness probe (always returns 200)
//   - GET /ready - readiness probe (pings the call store)
//   - GET /version - build information
//   - GET /metrics - Prometheus metrics, when enabled
//
// # Graceful Shutdown
//
// Cancelling the context passed to Start stops the listener and waits for
// in-flight calls up to server.shutdown_timeout. Signal handling lives in
// the command, not here.
package server
