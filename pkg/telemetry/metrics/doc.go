// Package metrics provides Prometheus metrics collection for chatrelay.
//
// # Overview
//
// The Collector owns a dedicated registry holding the call metrics, the
// provider error counters and the store gauge, plus the Go runtime and
// process collectors.
//
// # Metrics
//
//   - chatrelay_calls_total{model,status}
//   - chatrelay_call_duration_seconds{model}
//   - chatrelay_call_tokens_total{model,type}
//   - chatrelay_call_error_flags_total{model}
//   - chatrelay_provider_errors_total{error_type}
//   - chatrelay_provider_latency_seconds{model}
//   - chatrelay_stored_records
//   - chatrelay_store_errors_total{operation}
//
// Model labels come from caller input, so at most 500 distinct values are
// kept; later models are reported as "other".
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCall("gpt-4o", metrics.StatusSuccess, elapsed, 12, 40, 0)
//	mux.Handle("/metrics", collector.Handler())
package metrics
