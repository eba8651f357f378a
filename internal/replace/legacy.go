package replace

import (
	"context"

	"github.com/relaydeploy/relay/internal/apperrors"
)

// legacy implements the pre-rolling-update replacement mode: stop,
// remove, then create with the original name and configuration, with no
// health gate. The three steps must run in exactly this order.
func (e *Engine) legacy(ctx context.Context, target Target, opts Options) bool {
	c := target.Container
	log := e.log.With("container", c.Name, "mode", "legacy")

	inspection, err := e.client.Inspect(ctx, c.ID)
	if err != nil {
		log.Error("inspect failed before replacement",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "inspect", Err: err})
		return false
	}

	newConfig := inspection.Config.CloneForNewImage(target.NewImageReference)
	originalHostConfig := inspection.HostConfig.CloneOriginalHostConfig()
	originalNetworking := inspection.NetworkingConfig.CloneWithFreshAddresses()

	if err := e.client.Stop(ctx, c.ID); err != nil {
		log.Error("failed to stop container",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "stop_original", Err: err})
		return false
	}
	if err := e.client.Remove(ctx, c.ID); err != nil {
		log.Error("failed to remove container mid-replacement; original config was",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "remove_original", Err: err},
			"original_image", inspection.Config.Image())
		return false
	}
	if _, err := e.client.CreateAndStart(ctx, c.Name, newConfig, originalHostConfig, originalNetworking); err != nil {
		log.Error("failed to recreate container with new image; original container has already been removed",
			"error", &apperrors.ReplacementError{Container: c.Name, Step: "recreate", Err: err},
			"original_image", inspection.Config.Image())
		return false
	}

	e.cleanupOldImage(ctx, target, opts)
	return true
}
