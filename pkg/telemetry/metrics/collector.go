package metrics

import (
	"sync"
	"time"

	"mercator-hq/chatrelay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Call status label values.
const (
	StatusSuccess        = "success"
	StatusInvalidRequest = "invalid_request"
	StatusProviderError  = "provider_error"
	StatusStorageError   = "storage_error"
)

// otherModel replaces model labels once the cardinality limit is reached.
const otherModel = "other"

// maxModelLabels bounds the number of distinct model label values.
const maxModelLabels = 500

// Collector owns the Prometheus registry and every metric chatrelay exports.
// A disabled collector accepts all calls and records nothing.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	callMetrics     *CallMetrics
	providerMetrics *ProviderMetrics
	storeMetrics    *StoreMetrics

	models *CardinalityLimiter
}

// NewCollector creates a collector from cfg. If registry is nil a fresh one
// is created. Go runtime and process collectors are registered alongside
// the call metrics.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}
	buckets := cfg.DurationBuckets
	if len(buckets) == 0 {
		buckets = config.DefaultDurationBuckets
	}

	c := &Collector{
		enabled:  cfg.IsEnabled(),
		registry: registry,
		models:   NewCardinalityLimiter(maxModelLabels),
	}

	c.callMetrics = NewCallMetrics(namespace, buckets, registry)
	c.providerMetrics = NewProviderMetrics(namespace, buckets, registry)
	c.storeMetrics = NewStoreMetrics(namespace, registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// RecordCall records a call that passed input validation.
//
// Parameters:
//   - model: Model name from the request
//   - status: StatusSuccess, StatusProviderError or StatusStorageError
//   - duration: Provider call duration
//   - promptTokens, completionTokens: Token counts reported by the provider
//   - errorFlag: 1 when the reply matched the runaway-newline pattern
func (c *Collector) RecordCall(model, status string, duration time.Duration, promptTokens, completionTokens, errorFlag int) {
	if !c.enabled {
		return
	}

	model = c.modelLabel(model)
	c.callMetrics.RecordCall(model, status, duration)

	if status != StatusSuccess && status != StatusStorageError {
		return
	}
	c.callMetrics.RecordTokens(model, promptTokens, completionTokens)
	if errorFlag == 1 {
		c.callMetrics.RecordErrorFlag(model)
	}
}

// RecordInvalidRequest counts a call rejected before reaching the provider.
func (c *Collector) RecordInvalidRequest() {
	if !c.enabled {
		return
	}
	c.callMetrics.requestsTotal.WithLabelValues("", StatusInvalidRequest).Inc()
}

// RecordProviderError records an error from the provider, labelled with the
// short type returned by providers.ErrorType.
func (c *Collector) RecordProviderError(errorType string) {
	if !c.enabled {
		return
	}
	c.providerMetrics.RecordError(errorType)
}

// RecordProviderLatency records the latency of one provider call.
func (c *Collector) RecordProviderLatency(model string, latency time.Duration) {
	if !c.enabled {
		return
	}
	c.providerMetrics.RecordLatency(c.modelLabel(model), latency)
}

// RecordStoreError counts a failed persistence operation.
func (c *Collector) RecordStoreError(operation string) {
	if !c.enabled {
		return
	}
	c.storeMetrics.RecordError(operation)
}

// SetStoredRecords publishes the number of stored call records.
func (c *Collector) SetStoredRecords(count int64) {
	if !c.enabled {
		return
	}
	c.storeMetrics.SetRecords(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) modelLabel(model string) string {
	if !c.models.Allow(model) {
		return otherModel
	}
	return model
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Values already seen
// are always allowed; new values are allowed until the limit is reached.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
