package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks upstream provider behaviour.
//
// Metrics:
//   - chatrelay_provider_errors_total: Provider errors by type
//   - chatrelay_provider_latency_seconds: Provider round trip by model, including failures
type ProviderMetrics struct {
	errors  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(namespace string, buckets []float64, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors by type",
			},
			[]string{"error_type"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_latency_seconds",
				Help:      "Provider API call latency in seconds",
				Buckets:   buckets,
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(pm.errors, pm.latency)

	return pm
}

// RecordError records an error from the provider.
func (pm *ProviderMetrics) RecordError(errorType string) {
	pm.errors.WithLabelValues(errorType).Inc()
}

// RecordLatency records the latency of one provider call.
func (pm *ProviderMetrics) RecordLatency(model string, latency time.Duration) {
	pm.latency.WithLabelValues(model).Observe(latency.Seconds())
}
