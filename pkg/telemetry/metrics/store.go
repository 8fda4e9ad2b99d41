package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics tracks the call record store.
//
// Metrics:
//   - chatrelay_stored_records: Number of stored call records, refreshed by maintenance
//   - chatrelay_store_errors_total: Failed store operations by operation
type StoreMetrics struct {
	records prometheus.Gauge
	errors  *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics with the provided registry.
func NewStoreMetrics(namespace string, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_records",
			Help:      "Number of call records in the store",
		}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of failed store operations",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(sm.records, sm.errors)

	return sm
}

// SetRecords sets the stored record gauge.
func (sm *StoreMetrics) SetRecords(count int64) {
	sm.records.Set(float64(count))
}

// RecordError counts a failed store operation.
func (sm *StoreMetrics) RecordError(operation string) {
	sm.errors.WithLabelValues(operation).Inc()
}
