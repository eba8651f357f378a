package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/relaydeploy/relay/internal/detector"
	"github.com/relaydeploy/relay/internal/dockerconfig"
	"github.com/relaydeploy/relay/internal/engine"
	"github.com/relaydeploy/relay/internal/history"
	"github.com/relaydeploy/relay/internal/notification"
	"github.com/relaydeploy/relay/internal/orchestrator"
	"github.com/relaydeploy/relay/internal/registry"
	"github.com/relaydeploy/relay/internal/replace"
)

var (
	runOnce           bool
	runNoStartupCheck bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the update loop",
	Long: `Run watches labeled containers and checks their registries for newer
images on a fixed interval, replacing any container whose image has an
update, until it receives SIGINT or SIGTERM.

With --once it runs a single cycle and exits, useful for cron-style
external schedulers. With --no-startup-check it skips the immediate
first-pass cycle and waits for the first tick instead.`,
	Example: `  # Run continuously at the configured interval
  relay run

  # Run one cycle and exit
  relay run --once

  # Run continuously, but wait for the first tick before checking
  relay run --no-startup-check`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			if loadErr := GetConfigLoadError(); loadErr != nil {
				return fmt.Errorf("configuration not loaded: %w\n\nTo get started, run: relay init", loadErr)
			}
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: relay init")
		}

		log := GetLogger()

		eng, err := engine.NewClient(cfg.EngineHost, cfg.EngineTimeout())
		if err != nil {
			return fmt.Errorf("failed to create engine client: %w", err)
		}
		defer func() { _ = eng.Close() }()

		regClient := registry.NewClient(cfg.EngineTimeout())
		credLoader := dockerconfig.NewCachedLoader()
		lookup := registry.CredentialsLookup(func(host string) registry.Credentials {
			store, loadErr := credLoader.Load(cfg.EngineConfigPath)
			if loadErr != nil {
				return registry.Credentials{}
			}
			return store.Lookup(host)
		})
		tagsFn := detector.TagsFrom(regClient, lookup)

		notifier, err := notification.NewNotifier(cfg)
		if err != nil {
			log.Warn("notification disabled", "error", err)
		}

		hist, err := history.Load(cfg.HistoryFilePath, cfg.HistoryMaxCycles)
		if err != nil {
			log.Warn("failed to load cycle history, starting fresh", "error", err)
			hist = nil
		}

		deps := orchestrator.Dependencies{
			Engine:   eng,
			Tags:     tagsFn,
			Replacer: replace.New(eng, log),
			ReplaceOptions: replace.Options{
				RollingUpdateEnabled: cfg.RollingUpdateEnabled,
				HealthcheckTimeout:   cfg.HealthcheckTimeout(),
				HealthcheckInterval:  cfg.HealthcheckInterval(),
				CleanupOldImages:     cfg.CleanupOldImages,
			},
			EnableLabelKey: cfg.EnableLabelKey,
			Notifier:       notifier,
			Log:            log,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runAndRecord := func() {
			counters, summaries := orchestrator.RunCycle(ctx, deps)
			if hist != nil {
				if err := hist.RecordCycle(counters, containerOutcomes(summaries)); err != nil {
					log.Warn("failed to persist cycle history", "error", err)
				}
			}
		}

		if runOnce {
			runAndRecord()
			return nil
		}

		if cfg.CheckOnStartup && !runNoStartupCheck {
			runAndRecord()
		}

		ticker := time.NewTicker(cfg.CheckInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runAndRecord()
			case <-ctx.Done():
				log.Info("shutting down")
				return nil
			}
		}
	},
}

// containerOutcomes converts a cycle's notification summaries into the
// history package's own outcome shape, so cmd/status.go can show
// per-container detail for the most recent cycle.
func containerOutcomes(summaries []notification.UpdateSummary) []history.ContainerOutcome {
	if len(summaries) == 0 {
		return nil
	}
	outcomes := make([]history.ContainerOutcome, 0, len(summaries))
	for _, s := range summaries {
		outcomes = append(outcomes, history.ContainerOutcome{
			Name:              s.ContainerName,
			ImageReference:    s.ImageReference,
			Updated:           !s.Failed,
			Failed:            s.Failed,
			NewImageReference: s.NewImageReference,
			Detail:            s.Reason,
		})
	}
	return outcomes
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().BoolVar(&runNoStartupCheck, "no-startup-check", false, "skip the immediate first-pass cycle and wait for the first tick")
}
