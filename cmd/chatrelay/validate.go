package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/chatrelay/pkg/cli"
	"mercator-hq/chatrelay/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report every validation error found.

Examples:
  # Validate the default config.yaml
  chatrelay validate

  # Validate a specific file and print the result as JSON
  chatrelay validate --config /etc/chatrelay/config.yaml --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationResult is the report printed by the validate command.
type validationResult struct {
	Path     string            `json:"path"`
	Valid    bool              `json:"valid"`
	Errors   []string          `json:"errors,omitempty"`
	Settings map[string]string `json:"settings,omitempty"`

	order []string
}

func (r *validationResult) Header() []string {
	return []string{"SETTING", "VALUE"}
}

func (r *validationResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.order))
	for _, key := range r.order {
		rows = append(rows, []string{key, r.Settings[key]})
	}
	return rows
}

func (r *validationResult) set(key, value string) {
	if r.Settings == nil {
		r.Settings = make(map[string]string)
	}
	r.Settings[key] = value
	r.order = append(r.order, key)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
	if err != nil {
		return err
	}

	result := &validationResult{Path: cfgFile}
	cfg, loadErr := loadConfig()
	if loadErr != nil {
		var verr config.ValidationError
		if errors.As(loadErr, &verr) {
			for _, fe := range verr.Errors {
				result.Errors = append(result.Errors, fe.Error())
			}
		} else {
			result.Errors = []string{loadErr.Error()}
		}
	} else {
		result.Valid = true
		describeConfig(result, cfg)
	}

	out := cmd.OutOrStdout()
	if validateFlags.format == string(cli.FormatJSON) {
		if err := formatter.FormatTo(out, result); err != nil {
			return err
		}
		return loadErr
	}

	if !result.Valid {
		fmt.Fprintf(out, "✗ Configuration invalid (%s)\n", cfgFile)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
		return loadErr
	}

	fmt.Fprintf(out, "✓ Configuration valid (%s)\n\n", cfgFile)
	return formatter.FormatTo(out, result)
}

func describeConfig(r *validationResult, cfg *config.Config) {
	r.set("server.listen_address", cfg.Server.ListenAddress)
	r.set("server.write_timeout", cfg.Server.WriteTimeout.String())
	r.set("provider.base_url", cfg.Provider.BaseURL)
	r.set("provider.timeout", cfg.Provider.Timeout.String())
	r.set("storage.backend", cfg.Storage.Backend)
	if cfg.Storage.Backend != "memory" {
		r.set("storage.sqlite.driver", cfg.Storage.SQLite.Driver)
		r.set("storage.sqlite.path", cfg.Storage.SQLite.Path)
	}
	r.set("telemetry.logging.level", cfg.Telemetry.Logging.Level)
	r.set("telemetry.metrics.enabled", strconv.FormatBool(cfg.Telemetry.Metrics.IsEnabled()))
	r.set("telemetry.tracing.enabled", strconv.FormatBool(cfg.Telemetry.Tracing.Enabled))
}
