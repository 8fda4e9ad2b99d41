package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/chatrelay/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: "Chatrelay - recording relay for chat-completion calls",
	Long: `Chatrelay forwards chat-completion calls to an OpenAI-compatible provider
using the caller's own API key and records each completed call.

It exposes:
  - POST /api/call to relay a call and record it
  - /health, /ready and /version for orchestration
  - Prometheus metrics and optional OpenTelemetry tracing

Recorded calls can be inspected offline with the records command.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
