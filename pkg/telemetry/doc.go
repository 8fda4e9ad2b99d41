// Package telemetry groups chatrelay's observability packages.
//
//   - logging: slog construction, context fields, credential redaction
//   - metrics: Prometheus collector and /metrics handler
//   - tracing: OpenTelemetry spans and W3C propagation
//   - health: /health, /ready and /version endpoints
package telemetry
