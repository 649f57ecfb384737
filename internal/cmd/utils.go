package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/logger"
	"github.com/hargabyte/salesreport/internal/output"
	"github.com/hargabyte/salesreport/internal/store"
)

// resolveConfigPath returns the --config value or the default file name.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigFileName
}

// loadConfig loads configuration and initializes logging. An unreadable or
// invalid file is reported and replaced by defaults.
func loadConfig() *config.Config {
	var warnings []error
	cfg := config.LoadOrDefault(resolveConfigPath(), func(err error) { warnings = append(warnings, err) })

	logErr := logger.Init(cfg.Logging)
	logger.SetVerbose(verbose)

	log := logger.Get("config")
	for _, w := range warnings {
		log.WithError(w).Warn("using default configuration")
	}
	if logErr != nil {
		log.WithError(logErr).Warn("log file unavailable, logging to stderr")
	}
	return cfg
}

// openStore opens the configured data source.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	return s, nil
}

// printResult writes v to the command output in the --format format.
func printResult(cmd *cobra.Command, v interface{}) error {
	return output.Write(cmd.OutOrStdout(), outputFormat, v)
}
