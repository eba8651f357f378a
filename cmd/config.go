// Package cmd implements the CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration that relay will use at runtime.

This shows the merged configuration from:
  1. Default values
  2. Configuration file (config.yaml)
  3. Environment variables (RELAY_ prefix, highest priority)

Sensitive values like the notification URL are masked for security.`,
	Example: `  # Show current configuration
  relay config

  # Show with custom config file
  relay config --config /etc/relay/config.yaml`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: relay init")
		}

		fmt.Println("=== relay Effective Configuration ===")
		fmt.Println()

		fmt.Println("Update Check:")
		fmt.Printf("   Interval:          %s\n", cfg.CheckInterval())
		fmt.Printf("   Check on startup:  %v\n", cfg.CheckOnStartup)
		fmt.Printf("   Enable label key:  %s\n", cfg.EnableLabelKey)
		fmt.Printf("   Cleanup old images: %v\n", cfg.CleanupOldImages)
		fmt.Println()

		fmt.Println("Engine:")
		fmt.Printf("   Host:              %s\n", cfg.EngineHost)
		fmt.Printf("   Timeout:           %s\n", cfg.EngineTimeout())
		if cfg.EngineConfigPath != "" {
			fmt.Printf("   Config path:       %s\n", cfg.EngineConfigPath)
		}
		fmt.Println()

		fmt.Println("Rolling Update:")
		fmt.Printf("   Enabled:           %v\n", cfg.RollingUpdateEnabled)
		fmt.Printf("   Healthcheck timeout:  %s\n", cfg.HealthcheckTimeout())
		fmt.Printf("   Healthcheck interval: %s\n", cfg.HealthcheckInterval())
		fmt.Println()

		fmt.Println("Notification:")
		fmt.Printf("   Enabled:           %v\n", cfg.Notification.Enabled)
		fmt.Printf("   Shoutrrr URL:      %s\n", maskShoutrrrURL(cfg.Notification.ShoutrrrURL))
		fmt.Println()

		if cfg.ConfigFilePath != "" {
			fmt.Printf("Loaded from: %s\n", cfg.ConfigFilePath)
		} else {
			fmt.Println("Loaded from: defaults and environment only, no config file found")
		}

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
}

// maskShoutrrrURL masks the credential portion of a Shoutrrr URL, showing
// only the service scheme (e.g. "slack://***").
func maskShoutrrrURL(url string) string {
	if url == "" {
		return "not configured"
	}

	parts := strings.SplitN(url, "://", 2)
	if len(parts) != 2 {
		return "configured (unrecognized format)"
	}

	return fmt.Sprintf("%s://***", parts[0])
}
