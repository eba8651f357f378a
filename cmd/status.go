package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/relaydeploy/relay/internal/history"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of recent update cycles",
	Long: `Display the outcome of the last N cycles recorded in the on-disk
cycle history.

This is purely observational: relay never reads this file back to make
a decision, so a missing or corrupt history file never changes what
the next cycle does.`,
	Example: `  # Show recent cycle history
  relay status`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: relay init")
		}

		h, err := history.Load(cfg.HistoryFilePath, cfg.HistoryMaxCycles)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		cycles := h.Recent()
		if len(cycles) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recorded cycles yet")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "history file: %s\n", cfg.HistoryFilePath)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "Time\tChecked\tUpdated\tFailed")
		_, _ = fmt.Fprintln(w, "----\t-------\t-------\t------")
		for _, c := range cycles {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
				c.Timestamp.Format("2006-01-02 15:04:05"), c.Checked, c.Updated, c.Failed)
		}
		_ = w.Flush()

		last := cycles[len(cycles)-1]
		if len(last.Containers) > 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Last cycle detail:")
			for _, co := range last.Containers {
				switch {
				case co.Failed:
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s (%s): %s\n", co.Name, co.ImageReference, co.Detail)
				case co.Updated:
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  updated: %s: %s -> %s\n", co.Name, co.ImageReference, co.NewImageReference)
				}
			}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "showing %d of up to %d retained cycle(s)\n", len(cycles), cfg.HistoryMaxCycles)

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}
