package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/chatrelay/pkg/calls"
	"mercator-hq/chatrelay/pkg/calls/maintenance"
	"mercator-hq/chatrelay/pkg/calls/storage"
	"mercator-hq/chatrelay/pkg/cli"
	"mercator-hq/chatrelay/pkg/config"
	"mercator-hq/chatrelay/pkg/providers"
	"mercator-hq/chatrelay/pkg/providers/openai"
	"mercator-hq/chatrelay/pkg/proxy/handlers"
	"mercator-hq/chatrelay/pkg/server"
	"mercator-hq/chatrelay/pkg/telemetry/health"
	"mercator-hq/chatrelay/pkg/telemetry/logging"
	"mercator-hq/chatrelay/pkg/telemetry/metrics"
	"mercator-hq/chatrelay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the chatrelay server",
	Long: `Start the chatrelay server with the specified configuration.

The server listens on the configured address, relays POST /api/call requests
to the provider and records each completed call in the store.

Examples:
  # Start with default config
  chatrelay run

  # Start with custom config
  chatrelay run --config /etc/chatrelay/config.yaml

  # Override listen address
  chatrelay run --listen 0.0.0.0:8080

  # Validate config without starting server
  chatrelay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", "invalid override", err)
	}

	logger, err := logging.New(logging.Config{
		Level:             cfg.Telemetry.Logging.Level,
		Format:            cfg.Telemetry.Logging.Format,
		AddSource:         cfg.Telemetry.Logging.AddSource,
		RedactCredentials: cfg.Telemetry.Logging.RedactEnabled(),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", "failed to create logger", err)
	}
	logger.SetDefault()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(out, cfg)

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	store, err := storage.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open call store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close call store", "error", err)
		}
	}()
	fmt.Fprintf(out, "✓ Call store opened (%s)\n", storeDescription(&cfg.Storage))

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	provider, err := openai.NewProvider(providers.ProviderConfig{
		Name:                cfg.Provider.Type,
		Type:                cfg.Provider.Type,
		BaseURL:             cfg.Provider.BaseURL,
		Organization:        cfg.Provider.Organization,
		Timeout:             cfg.Provider.Timeout,
		MaxIdleConns:        cfg.Provider.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Provider.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Provider.IdleConnTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	defer provider.Close()
	fmt.Fprintf(out, "✓ Provider initialized (%s)\n", cfg.Provider.BaseURL)

	callHandler, err := handlers.NewCallHandler(handlers.CallHandlerConfig{
		Provider:     provider,
		Store:        store,
		Logger:       logger.Slog(),
		Metrics:      collector,
		Tracer:       tracer,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	if err != nil {
		return err
	}

	checker := health.New(health.DefaultCheckTimeout)
	checker.RegisterCheck("store", store.Ping)

	if scheduler := startMaintenance(ctx, store, &cfg.Storage.Maintenance, collector); scheduler != nil {
		defer scheduler.Stop()
	}

	startReloaders(ctx, logger)

	srv, err := server.New(&cfg.Server, server.Dependencies{
		CallHandler: callHandler,
		Checker:     checker,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Logger:      logger.Slog(),
		Version:     Version,
		Commit:      GitCommit,
		BuildTime:   BuildDate,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// startMaintenance schedules WAL checkpoints and publishes the stored record
// count once at startup. It returns nil when maintenance is off.
func startMaintenance(ctx context.Context, store calls.Storage, cfg *config.MaintenanceConfig, gauge maintenance.RecordGauge) *maintenance.Scheduler {
	if cfg.Disabled || cfg.CheckpointSchedule == "" {
		return nil
	}

	scheduler := maintenance.NewScheduler(store, cfg.CheckpointSchedule, gauge)
	if err := scheduler.Start(ctx); err != nil {
		slog.Warn("failed to start store maintenance", "error", err)
		return nil
	}
	go scheduler.RunOnce(ctx)
	return scheduler
}

// startReloaders applies the log level from the configuration file on
// SIGHUP, and on every file change when telemetry.logging.watch is set.
// A --log-level flag pins the level and disables reloading.
func startReloaders(ctx context.Context, logger *logging.Logger) {
	if runFlags.logLevel != "" {
		return
	}

	apply := func(cfg *config.Config) {
		if err := logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
			slog.Warn("ignoring reloaded log level", "level", cfg.Telemetry.Logging.Level, "error", err)
			return
		}
		slog.Info("log level applied", "level", cfg.Telemetry.Logging.Level)
	}

	hup, stop := cli.NotifyReload()
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				cfg, err := config.LoadOptional(cfgFile)
				if err != nil {
					slog.Error("config reload failed", "path", cfgFile, "error", err)
					continue
				}
				apply(cfg)
			}
		}
	}()

	cfg, err := config.LoadOptional(cfgFile)
	if err != nil || !cfg.Telemetry.Logging.Watch {
		return
	}
	watcher, err := config.NewWatcher(cfgFile, logger.Slog())
	if err != nil {
		slog.Warn("config watching disabled", "error", err)
		return
	}
	go func() {
		if err := watcher.Watch(ctx, apply); err != nil {
			slog.Error("config watcher exited", "error", err)
		}
	}()
}

func storeDescription(cfg *config.StorageConfig) string {
	if cfg.Backend == "memory" {
		return "memory"
	}
	return fmt.Sprintf("%s, driver %s", cfg.SQLite.Path, cfg.SQLite.Driver)
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Chatrelay %s\n", Version)
	fmt.Fprintf(w, "  call endpoint: POST %s\n", server.CallPath)
	fmt.Fprintf(w, "  provider:      %s\n", cfg.Provider.BaseURL)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(w, "  metrics:       %s\n", cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(w)
}
