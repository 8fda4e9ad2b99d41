// Package tracing provides OpenTelemetry tracing for chatrelay.
//
// When telemetry.tracing.enabled is false, New returns a noop tracer and no
// exporter is created. When enabled, spans are batched to an OTLP/gRPC
// collector (exporter: otlp) or a Zipkin server (exporter: zipkin), and root
// spans are sampled at telemetry.tracing.sample_ratio.
//
// Each call produces two spans beneath the inbound request context:
//
//   - provider.chat_completion, around the upstream call
//   - calls.store, around the insert
//
// Both carry chatrelay.call_id and chatrelay.model. HTTPMiddleware extracts
// W3C traceparent headers so a caller's trace continues through chatrelay.
package tracing
