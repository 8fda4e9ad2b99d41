package main

import (
	"errors"

	"mercator-hq/chatrelay/pkg/cli"
	"mercator-hq/chatrelay/pkg/config"
)

// loadConfig loads the configuration file named by --config. A missing file
// falls back to the built-in defaults plus environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			return nil, cli.NewConfigError(cfgFile, "invalid configuration", err)
		}
		return nil, cli.NewConfigError(cfgFile, "failed to load config", err)
	}
	return cfg, nil
}
