package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CallMetrics tracks per-call outcomes.
//
// Metrics:
//   - chatrelay_calls_total: Calls by model and status
//   - chatrelay_call_duration_seconds: Provider call duration by model
//   - chatrelay_call_tokens_total: Tokens by model and type (prompt, completion)
//   - chatrelay_call_error_flags_total: Replies flagged by the newline detector
type CallMetrics struct {
	requestsTotal  *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	tokensTotal    *prometheus.CounterVec
	errorFlagTotal *prometheus.CounterVec
}

// NewCallMetrics creates and registers call metrics with the provided registry.
func NewCallMetrics(namespace string, buckets []float64, registry *prometheus.Registry) *CallMetrics {
	cm := &CallMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of calls handled",
			},
			[]string{"model", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Duration of provider calls in seconds",
				Buckets:   buckets,
			},
			[]string{"model"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "call_tokens_total",
				Help:      "Total number of tokens reported by the provider",
			},
			[]string{"model", "type"},
		),

		errorFlagTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "call_error_flags_total",
				Help:      "Total number of replies flagged for runaway newlines",
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(
		cm.requestsTotal,
		cm.duration,
		cm.tokensTotal,
		cm.errorFlagTotal,
	)

	return cm
}

// RecordCall increments the call counter and observes the duration.
func (cm *CallMetrics) RecordCall(model, status string, duration time.Duration) {
	cm.requestsTotal.WithLabelValues(model, status).Inc()
	cm.duration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordTokens records prompt and completion token counts.
func (cm *CallMetrics) RecordTokens(model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		cm.tokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		cm.tokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordErrorFlag counts a flagged reply.
func (cm *CallMetrics) RecordErrorFlag(model string) {
	cm.errorFlagTotal.WithLabelValues(model).Inc()
}
