// Package orchestrator drives one sequential pass over every monitored
// container: check for an update, replace if one is found, and tally the
// outcome.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/relaydeploy/relay/internal/detector"
	"github.com/relaydeploy/relay/internal/engine"
	"github.com/relaydeploy/relay/internal/model"
	"github.com/relaydeploy/relay/internal/notification"
	"github.com/relaydeploy/relay/internal/replace"
)

// Dependencies bundles everything one cycle needs. EnableLabelKey and
// ReplaceOptions are resolved once by the caller from configuration; the
// orchestrator itself carries no configuration state. Notifier is
// optional: a nil Notifier or one with notifications disabled means the
// cycle's outcome is simply never reported anywhere but the log.
type Dependencies struct {
	Engine         engine.Client
	Tags           detector.RegistryTagsFunc
	Replacer       *replace.Engine
	ReplaceOptions replace.Options
	EnableLabelKey string
	Notifier       *notification.Notifier
	Log            *slog.Logger
}

// RunCycle performs one sequential pass over all monitored containers and
// returns the resulting counters together with a per-container summary for
// notification and history. It never returns an error: listing failures,
// detector failures, and replacement failures are all folded into the
// counters and logged, per the cycle orchestrator's contract. A container
// whose check is still in flight when ctx is cancelled is not counted at
// all; one whose replacement is still in flight stays counted as checked
// but not as failed. Either way the cycle simply stops where it stands.
func RunCycle(ctx context.Context, deps Dependencies) (model.CycleCounters, []notification.UpdateSummary) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	containers, err := deps.Engine.ListMonitored(ctx, deps.EnableLabelKey)
	if err != nil {
		log.Error("failed to list monitored containers", "error", err)
		return model.CycleCounters{}, nil
	}
	if len(containers) == 0 {
		log.Info("no monitored containers found")
		return model.CycleCounters{}, nil
	}

	var counters model.CycleCounters
	var summaries []notification.UpdateSummary

	for _, ec := range containers {
		select {
		case <-ctx.Done():
			log.Warn("cycle cancelled", "checked", counters.Checked, "updated", counters.Updated, "failed", counters.Failed)
			return counters, summaries
		default:
		}

		c := model.MonitoredContainer{
			ID:             ec.ID,
			Name:           ec.Name,
			ImageReference: ec.ImageReference,
			ImageDigest:    ec.ImageDigest,
			Labels:         ec.Labels,
		}

		result := detector.Check(ctx, c, deps.Engine, deps.Tags)
		if result.Kind == detector.Failed && ctx.Err() != nil {
			log.Warn("cycle cancelled mid-check", "container", c.Name, "checked", counters.Checked, "updated", counters.Updated, "failed", counters.Failed)
			return counters, summaries
		}

		counters.Checked++
		switch result.Kind {
		case detector.NoUpdate:
			// no counter change, no digest entry
		case detector.Failed:
			log.Warn("update check failed", "container", c.Name, "reason", result.Reason)
			counters.Failed++
			summaries = append(summaries, notification.UpdateSummary{
				ContainerName:  c.Name,
				ImageReference: c.ImageReference,
				Failed:         true,
				Reason:         result.Reason,
			})
		case detector.UpdateFound:
			target := replace.Target{
				Container:         c,
				NewImageReference: result.NewImageReference,
				NewDigest:         result.NewDigest,
			}
			replaced := deps.Replacer.Replace(ctx, target, deps.ReplaceOptions)
			switch {
			case replaced:
				log.Info("container updated",
					"container", c.Name,
					"from_digest", result.CurrentDigest,
					"to_digest", result.NewDigest,
					"image", result.NewImageReference)
				counters.Updated++
				summaries = append(summaries, notification.UpdateSummary{
					ContainerName:     c.Name,
					ImageReference:    c.ImageReference,
					OldDigest:         result.CurrentDigest,
					NewDigest:         result.NewDigest,
					NewImageReference: result.NewImageReference,
				})
			case ctx.Err() != nil:
				log.Warn("cycle cancelled mid-replace", "container", c.Name, "checked", counters.Checked, "updated", counters.Updated, "failed", counters.Failed)
				return counters, summaries
			default:
				counters.Failed++
				summaries = append(summaries, notification.UpdateSummary{
					ContainerName:  c.Name,
					ImageReference: c.ImageReference,
					Failed:         true,
					Reason:         "replacement failed, see log for detail",
				})
			}
		}
	}

	log.Info("cycle complete", "checked", counters.Checked, "updated", counters.Updated, "failed", counters.Failed)

	if deps.Notifier != nil {
		if err := deps.Notifier.NotifyCycle(counters, summaries); err != nil {
			log.Warn("failed to send cycle notification", "error", err)
		}
	}

	return counters, summaries
}
