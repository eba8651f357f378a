// Package cmd implements the CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaydeploy/relay/internal/config"
	"github.com/relaydeploy/relay/internal/infra/logging"
	"github.com/relaydeploy/relay/internal/version"
)

var (
	cfgFile       string
	verbose       bool
	logLevel      string
	logFormat     string
	cfg           *config.Config
	errConfigLoad error
	logger        *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Container image auto-update agent",
	Long: `relay is a container image auto-update agent. It watches running
containers opted in via labels, checks their registries for newer images,
and replaces them in place.

It features:
  - Digest-based and semantic-version-based update detection
  - Rolling replacement with a health-gated staging container
  - Per-container update strategy and healthcheck overrides via labels
  - Flexible notification system via Shoutrrr
  - Observational cycle history for operator visibility`,
	Version: version.GetFullVersion(),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger = logging.New(logFormat, logLevel)

		skipConfig := cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version"
		if skipConfig {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			// Store config load error for commands that need it (run, status, prune).
			// These commands fail fast in their RunE handlers when GetConfig() is nil.
			// init doesn't require config, so the error is stored, not thrown.
			errConfigLoad = err
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
			}
		}

		if verbose && cfg != nil {
			fmt.Fprintf(os.Stderr, "Loaded configuration from: %s\n", cfg.ConfigFilePath)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// GetConfig returns the loaded configuration or nil if not loaded.
// Must be called after rootCmd.PersistentPreRunE has executed.
func GetConfig() *config.Config {
	return cfg
}

// GetConfigLoadError returns any error encountered during config loading.
// Returns nil if configuration loaded successfully or was not attempted.
func GetConfigLoadError() error {
	return errConfigLoad
}

// IsVerbose returns whether verbose mode is enabled via the -v flag.
func IsVerbose() bool {
	return verbose
}

// GetLogger returns the process logger configured by --log-level/--log-format.
// Must be called after rootCmd.PersistentPreRunE has executed.
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
