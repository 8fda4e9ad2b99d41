package config

import "time"

// Config is the root configuration structure for chatrelay.
// It contains all configuration sections for the HTTP server, the upstream
// chat-completion provider, call record storage and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and request size limits.
	Server ServerConfig `yaml:"server"`

	// Provider contains configuration for the upstream chat-completion provider.
	// The provider credential is never configured here: every call carries
	// the caller's own API key.
	Provider ProviderConfig `yaml:"provider"`

	// Storage contains configuration for call record persistence.
	Storage StorageConfig `yaml:"storage"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port".
	// Default: "0.0.0.0:5000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the provider timeout, otherwise slow provider
	// calls are cut off by the server before the provider gives up.
	// Default: 15m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight calls
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of a call request body.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// ProviderConfig contains configuration for the upstream provider.
type ProviderConfig struct {
	// Type selects the provider adapter.
	// Options: "openai"
	// Default: "openai"
	Type string `yaml:"type"`

	// BaseURL is the base URL of the chat completions API.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// Organization is sent as the OpenAI-Organization header when set.
	Organization string `yaml:"organization"`

	// Timeout is the maximum duration of one provider call.
	// Default: 10m
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum number of idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection remains in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// StorageConfig contains configuration for call record storage.
type StorageConfig struct {
	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Maintenance contains configuration for scheduled store maintenance.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver.
	// Options: "sqlite3" (github.com/mattn/go-sqlite3, requires cgo),
	// "sqlite" (modernc.org/sqlite, pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "api_calls.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits for the database lock.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WALEnabled reports whether WAL mode is enabled, applying the default when unset.
func (c SQLiteConfig) WALEnabled() bool {
	if c.WALMode == nil {
		return DefaultSQLiteWALMode
	}
	return *c.WALMode
}

// MaintenanceConfig contains configuration for scheduled store maintenance.
type MaintenanceConfig struct {
	// CheckpointSchedule is a cron expression for WAL checkpoints.
	// An empty value disables scheduled maintenance.
	// Default: "0 * * * *" (hourly)
	CheckpointSchedule string `yaml:"checkpoint_schedule"`

	// Disabled turns off scheduled maintenance entirely.
	Disabled bool `yaml:"disabled"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactCredentials masks API keys in log output.
	// Default: true
	RedactCredentials *bool `yaml:"redact_credentials"`

	// Watch reloads the log level when the configuration file changes.
	Watch bool `yaml:"watch"`
}

// RedactEnabled reports whether credential redaction is enabled.
func (c LoggingConfig) RedactEnabled() bool {
	if c.RedactCredentials == nil {
		return DefaultLoggingRedactCredentials
	}
	return *c.RedactCredentials
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "chatrelay"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are the histogram buckets for call durations in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// IsEnabled reports whether metrics are enabled, applying the default when unset.
func (c MetricsConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return DefaultMetricsEnabled
	}
	return *c.Enabled
}

// TracingConfig contains configuration for OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter.
	// Options: "otlp" (OTLP over gRPC), "zipkin" (Zipkin v2 JSON over HTTP)
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the collector endpoint: host:port for otlp, a full URL
	// for zipkin.
	// Default: "localhost:4317" (otlp), "http://localhost:9411/api/v2/spans" (zipkin)
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the OTLP collector.
	// Default: true
	Insecure *bool `yaml:"insecure"`

	// SampleRatio is the fraction of root spans to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "chatrelay"
	ServiceName string `yaml:"service_name"`
}

// IsInsecure reports whether the exporter connects without TLS.
func (c TracingConfig) IsInsecure() bool {
	if c.Insecure == nil {
		return DefaultTracingInsecure
	}
	return *c.Insecure
}
