package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
  read_timeout: "60s"

provider:
  base_url: "http://localhost:9999/v1"
  timeout: "30s"

storage:
  backend: "sqlite"
  sqlite:
    path: "./test-calls.db"
    driver: "sqlite"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Provider.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("expected base url, got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("expected timeout %v, got %v", 30*time.Second, cfg.Provider.Timeout)
	}
	if cfg.Storage.SQLite.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %q", cfg.Storage.SQLite.Driver)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	// Defaults fill the rest.
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: "postgres"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "storage.backend" {
		t.Errorf("unexpected field %q", verr.Errors[0].Field)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
`)

	t.Setenv("CHATRELAY_SERVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("CHATRELAY_STORAGE_SQLITE_PATH", "/var/lib/chatrelay/calls.db")
	t.Setenv("CHATRELAY_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("CHATRELAY_PROVIDER_TIMEOUT", "2m")
	t.Setenv("CHATRELAY_TELEMETRY_METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7000" {
		t.Errorf("env override not applied: %q", cfg.Server.ListenAddress)
	}
	if cfg.Storage.SQLite.Path != "/var/lib/chatrelay/calls.db" {
		t.Errorf("env override not applied: %q", cfg.Storage.SQLite.Path)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("env override not applied: %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Provider.Timeout != 2*time.Minute {
		t.Errorf("env override not applied: %v", cfg.Provider.Timeout)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics disabled by env")
	}
}

func TestLoadConfigWithEnvOverrides_OpenAIBaseURL(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("OPENAI_BASE_URL", "http://proxy.internal/v1")
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Provider.BaseURL != "http://proxy.internal/v1" {
		t.Errorf("OPENAI_BASE_URL not applied: %q", cfg.Provider.BaseURL)
	}

	t.Setenv("CHATRELAY_PROVIDER_BASE_URL", "http://other.internal/v1")
	cfg, err = LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Provider.BaseURL != "http://other.internal/v1" {
		t.Errorf("prefixed variable should win: %q", cfg.Provider.BaseURL)
	}
}

func TestLoadConfigWithEnvOverrides_ZipkinExporter(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("CHATRELAY_TELEMETRY_TRACING_EXPORTER", "zipkin")
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Telemetry.Tracing.Exporter != "zipkin" {
		t.Errorf("exporter = %q, want zipkin", cfg.Telemetry.Tracing.Exporter)
	}
	if cfg.Telemetry.Tracing.Endpoint != DefaultZipkinEndpoint {
		t.Errorf("endpoint = %q, want %q", cfg.Telemetry.Tracing.Endpoint, DefaultZipkinEndpoint)
	}
}

func TestLoadConfigWithEnvOverrides_DisableMaintenance(t *testing.T) {
	path := writeConfig(t, "")

	t.Setenv("CHATRELAY_STORAGE_MAINTENANCE_CHECKPOINT_SCHEDULE", "")
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Maintenance.CheckpointSchedule != "" || !cfg.Storage.Maintenance.Disabled {
		t.Errorf("expected maintenance disabled, got %+v", cfg.Storage.Maintenance)
	}
}

func TestLoadOptional_MissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Storage.SQLite.Path != DefaultSQLitePath {
		t.Errorf("expected default path, got %q", cfg.Storage.SQLite.Path)
	}
}

func TestLoadOptional_InvalidFile(t *testing.T) {
	path := writeConfig(t, "provider: {type: anthropic}")

	if _, err := LoadOptional(path); err == nil {
		t.Fatal("expected validation error for an existing invalid file")
	}
}
