package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/relaydeploy/relay/internal/engine"
)

var (
	pruneDryRun bool
	pruneForce  bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dangling images left behind by updates",
	Long: `Identify and remove images with no container referencing them.

Rolling updates leave the previous image behind unless cleanup_old_images
is enabled. The prune command lists dangling images or removes them with
confirmation, for operators who prefer to reclaim space on demand instead.`,
	Example: `  # List dangling images
  relay prune list

  # Preview what would be removed
  relay prune execute --dry-run

  # Remove with confirmation prompt
  relay prune execute

  # Remove without confirmation
  relay prune execute --force`,
}

var pruneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dangling images",
	Example: `  # List dangling images
  relay prune list`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: relay init")
		}

		ctx := context.Background()
		eng, err := engine.NewClient(cfg.EngineHost, cfg.EngineTimeout())
		if err != nil {
			return fmt.Errorf("failed to create engine client: %w", err)
		}
		defer func() { _ = eng.Close() }()

		ids, err := eng.ListDanglingImages(ctx)
		if err != nil {
			return fmt.Errorf("failed to list dangling images: %w", err)
		}

		if len(ids) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no dangling images found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "Image ID")
		_, _ = fmt.Fprintln(w, "--------")
		for _, id := range ids {
			_, _ = fmt.Fprintln(w, shortID(id))
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "found %d dangling image(s)\n", len(ids))
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "run 'relay prune execute' to remove them")

		return nil
	},
}

var pruneExecuteCmd = &cobra.Command{
	Use:   "execute",
	Short: "Remove dangling images",
	Long: `Remove images with no container referencing them.

By default, displays what will be removed and prompts for confirmation.
Use --dry-run to preview without removing, or --force to skip confirmation.`,
	Example: `  # Preview what would be removed
  relay prune execute --dry-run

  # Remove with confirmation prompt
  relay prune execute

  # Remove without confirmation
  relay prune execute --force`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: relay init")
		}

		ctx := context.Background()
		eng, err := engine.NewClient(cfg.EngineHost, cfg.EngineTimeout())
		if err != nil {
			return fmt.Errorf("failed to create engine client: %w", err)
		}
		defer func() { _ = eng.Close() }()

		ids, err := eng.ListDanglingImages(ctx)
		if err != nil {
			return fmt.Errorf("failed to list dangling images: %w", err)
		}

		if len(ids) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no dangling images found")
			return nil
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "found %d dangling image(s):\n", len(ids))
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		for _, id := range ids {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", shortID(id))
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")

		if pruneDryRun {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "dry run, no changes made")
			return nil
		}

		if !pruneForce {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), "proceed with removal? (y/N): ")
			var response string
			if _, scanErr := fmt.Fscanln(cmd.InOrStdin(), &response); scanErr != nil {
				response = "n"
			}
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "prune canceled")
				return nil
			}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")

		successCount := 0
		var errs []string
		for _, id := range ids {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  removing %s...", shortID(id))
			if err := eng.RemoveImage(ctx, id); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", shortID(id), err))
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), " failed")
				continue
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), " done")
			successCount++
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d image(s)\n", successCount)
		if len(errs) > 0 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "failed: %d image(s)\n", len(errs))
			for _, e := range errs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   - %s\n", e)
			}
		}

		return nil
	},
}

func shortID(id string) string {
	trimmed := strings.TrimPrefix(id, "sha256:")
	if len(trimmed) > 12 {
		return trimmed[:12]
	}
	return trimmed
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.AddCommand(pruneListCmd)
	pruneCmd.AddCommand(pruneExecuteCmd)

	pruneCmd.PersistentFlags().BoolVar(&pruneDryRun, "dry-run", false, "show what would be removed without actually removing")
	pruneCmd.PersistentFlags().BoolVar(&pruneForce, "force", false, "skip confirmation prompt")
}
