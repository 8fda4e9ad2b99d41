// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server applies the middleware in this order, outermost first:
//
//	handler = Chain(mux,
//	    RecoveryMiddleware(logger),
//	    RequestIDMiddleware,
//	    tracing.HTTPMiddleware,
//	    LoggingMiddleware(logger),
//	)
//
// Recovery sits outermost so that a panic anywhere below it still produces
// a JSON 500 body. The request ID is assigned before logging so the access
// log line carries request_id.
//
// # Request ID
//
// RequestIDMiddleware generates a UUID v4 per request unless the client
// sent one:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
package middleware
