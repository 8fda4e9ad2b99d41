package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// newTestConfig returns a fully defaulted configuration backed by the
// in-memory store.
func newTestConfig() *Config {
	cfg := Default()
	cfg.Storage.Backend = "memory"
	return cfg
}

func boolPtr(b bool) *bool { return &b }

func TestConfig_YAMLRoundTrip(t *testing.T) {
	src := `
server:
  listen_address: "127.0.0.1:9000"
  write_timeout: 20m
provider:
  base_url: "http://localhost:8081/v1"
  organization: "org-test"
storage:
  backend: sqlite
  sqlite:
    driver: sqlite
    path: /tmp/calls.db
    wal_mode: false
telemetry:
  metrics:
    enabled: false
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Provider.Organization != "org-test" {
		t.Errorf("Organization = %q", cfg.Provider.Organization)
	}
	if cfg.Storage.SQLite.Driver != "sqlite" {
		t.Errorf("Driver = %q", cfg.Storage.SQLite.Driver)
	}
	if cfg.Storage.SQLite.WALEnabled() {
		t.Error("expected WAL mode to be disabled")
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics to be disabled")
	}
}

func TestPointerDefaults(t *testing.T) {
	var cfg Config

	if !cfg.Storage.SQLite.WALEnabled() {
		t.Error("WAL mode should default to enabled")
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics should default to enabled")
	}
	if !cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("credential redaction should default to enabled")
	}
	if !cfg.Telemetry.Tracing.IsInsecure() {
		t.Error("tracing should default to insecure")
	}

	cfg.Telemetry.Logging.RedactCredentials = boolPtr(false)
	if cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("explicit false should disable redaction")
	}
}
