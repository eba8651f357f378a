package replace

import (
	"context"
	"time"

	"github.com/relaydeploy/relay/internal/apperrors"
	"github.com/relaydeploy/relay/internal/model"
)

// rolling implements §4.5's rolling replacement: stage the new image
// alongside the running original, verify it healthy, then swap. The old
// container is never stopped before the staging container is confirmed
// healthy.
func (e *Engine) rolling(ctx context.Context, target Target, opts Options) bool {
	c := target.Container
	log := e.log.With("container", c.Name, "mode", "rolling")

	inspection, err := e.client.Inspect(ctx, c.ID)
	if err != nil {
		log.Error("inspect failed before replacement",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "inspect", Err: err})
		return false
	}

	newConfig := inspection.Config.CloneForNewImage(target.NewImageReference)
	stagingHostConfig := inspection.HostConfig.CloneStagingHostConfig()
	stagingNetworking := inspection.NetworkingConfig.CloneWithFreshAddresses()

	stagingName := c.StagingName()
	stagingID, err := e.client.CreateStagingAndStart(ctx, stagingName, newConfig, stagingHostConfig, stagingNetworking)
	if err != nil {
		log.Error("failed to create staging container",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "create_staging", Err: err})
		return false
	}

	timeout, interval := resolveHealthWindow(c, opts)
	healthy, err := e.client.WaitHealthy(ctx, stagingID, timeout, interval)
	if err != nil {
		// Cancellation or a poll failure: best-effort clean up staging,
		// old container is untouched.
		e.bestEffortForceRemove(context.WithoutCancel(ctx), stagingID)
		log.Warn("health wait aborted",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "wait_healthy", Err: err})
		return false
	}
	if !healthy {
		e.bestEffortForceRemove(ctx, stagingID)
		log.Warn("staging container failed health check")
		return false
	}

	// From here on a failure is catastrophic: the original container may
	// already be gone. No automatic rollback is attempted; the error log
	// lines below carry the original image reference, and the rest of the
	// original configuration is not logged.
	if err := e.client.Stop(ctx, c.ID); err != nil {
		log.Error("failed to stop original container after staging succeeded; original config was",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "stop_original", Err: err},
			"original_image", inspection.Config.Image())
		e.bestEffortForceRemove(ctx, stagingID)
		return false
	}
	if err := e.client.Remove(ctx, c.ID); err != nil {
		log.Error("failed to remove original container mid-replacement; original config was",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "remove_original", Err: err},
			"original_image", inspection.Config.Image())
		e.bestEffortForceRemove(ctx, stagingID)
		return false
	}

	// Staging was only a health probe; the successor takes the original
	// name and full port bindings.
	e.bestEffortForceRemove(ctx, stagingID)

	originalHostConfig := inspection.HostConfig.CloneOriginalHostConfig()
	originalNetworking := inspection.NetworkingConfig.CloneWithFreshAddresses()
	if _, err := e.client.CreateAndStart(ctx, c.Name, newConfig, originalHostConfig, originalNetworking); err != nil {
		log.Error("failed to recreate container with new image; original container has already been removed",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "recreate", Err: err},
			"original_image", inspection.Config.Image())
		return false
	}

	e.cleanupOldImage(ctx, target, opts)
	return true
}

func (e *Engine) bestEffortForceRemove(ctx context.Context, stagingID string) {
	if err := e.client.ForceRemove(ctx, stagingID); err != nil {
		e.log.Warn("failed to remove staging container", "staging_id", stagingID, "error", err)
	}
}

// resolveHealthWindow returns the per-container healthcheck timeout
// override when the container declares one, else the global default. The
// poll interval is always the global default; there is no per-container
// override for it.
func resolveHealthWindow(c model.MonitoredContainer, opts Options) (timeout, interval time.Duration) {
	if override, ok := c.HealthcheckTimeoutOverride(); ok {
		return override, opts.HealthcheckInterval
	}
	return opts.HealthcheckTimeout, opts.HealthcheckInterval
}
