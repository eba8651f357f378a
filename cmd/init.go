package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaydeploy/relay/internal/templates"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize relay configuration",
	Long: `Init creates the configuration files relay needs to run.

This command will create:
  - config.yaml (sample configuration file)
  - .env (environment variable template)

Run this once when setting up relay for the first time.`,
	Example: `  # Initialize in current directory
  relay init

  # Force overwrite existing files
  relay init --force`,
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println("Initializing relay...")

		files := map[string][]byte{
			"config.yaml": templates.ConfigYAML,
			".env":        templates.EnvFile,
		}

		for filename, content := range files {
			if _, err := os.Stat(filename); err == nil && !force {
				fmt.Printf("skipping %s (already exists, use --force to overwrite)\n", filename)
				continue
			}

			if err := os.WriteFile(filename, content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}

			fmt.Printf("created %s\n", filename)
		}

		fmt.Println("\nInitialization complete!")
		fmt.Println("\nNext steps:")
		fmt.Println("   1. Edit config.yaml to set your check interval and engine host")
		fmt.Println("   2. Label the containers you want relay to manage: relay.enable=true")
		fmt.Println("   3. Run 'relay run --once' to test your setup")
		fmt.Println("   4. Run 'relay run' to start the update loop")

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration files")
}
