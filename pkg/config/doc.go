// Package config provides configuration management for chatrelay.
//
// This package handles loading, validating, and watching configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
//  3. From an optional file, falling back to defaults when it is missing:
//     cfg, err := config.LoadOptional("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CHATRELAY_SECTION_FIELD.
// For example:
//
//   - CHATRELAY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CHATRELAY_STORAGE_SQLITE_PATH overrides storage.sqlite.path
//   - CHATRELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// OPENAI_BASE_URL is also honored for provider.base_url.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// The provider API key is deliberately absent: every call supplies its own.
//
// # Live Reload
//
// Watcher observes the configuration file with fsnotify and reports each
// successfully reloaded Config. Only the log level is applied at runtime.
package config
