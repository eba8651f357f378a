// Package replace implements the rolling and legacy container replacement
// strategies: swapping a monitored container's image for a newer one,
// verifying health where the mode requires it, and cleaning up.
package replace

import (
	"context"
	"log/slog"
	"time"

	"github.com/relaydeploy/relay/internal/engine"
	"github.com/relaydeploy/relay/internal/model"
)

// Options configures a replacement attempt. HealthcheckTimeout is the
// global default; rolling mode uses a container's relay.healthcheck.timeout
// label instead when one is set (see resolveHealthWindow).
type Options struct {
	RollingUpdateEnabled bool
	HealthcheckTimeout   time.Duration
	HealthcheckInterval  time.Duration
	CleanupOldImages     bool
}

// Target names the replacement: the container being replaced, the image
// reference the detector found, and the digest that reference pulled to.
type Target struct {
	Container         model.MonitoredContainer
	NewImageReference string
	NewDigest         string
}

// Engine performs container replacement, dispatching to rolling or legacy
// mode per Options.RollingUpdateEnabled.
type Engine struct {
	client engine.Client
	log    *slog.Logger
}

// New returns an Engine driving client, logging progress and failures to
// log.
func New(client engine.Client, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{client: client, log: log}
}

// Replace runs the configured replacement mode for target and reports
// whether it succeeded. It never returns an error: every failure path is
// logged and folded into the boolean result, matching the replacement
// engine's own contract.
func (e *Engine) Replace(ctx context.Context, target Target, opts Options) bool {
	if opts.RollingUpdateEnabled {
		return e.rolling(ctx, target, opts)
	}
	return e.legacy(ctx, target, opts)
}

// cleanupOldImage removes target's previous image digest when configured
// to, tolerating and logging any failure without propagating it, per the
// spec's "failure is logged, never propagated" contract for this step.
// cleanup_old_images=false must never call RemoveImage at all.
func (e *Engine) cleanupOldImage(ctx context.Context, target Target, opts Options) {
	if !opts.CleanupOldImages {
		return
	}
	if err := e.client.RemoveImage(ctx, target.Container.ImageDigest); err != nil {
		e.log.Warn("failed to remove superseded image",
			"container", target.Container.Name,
			"digest", target.Container.ImageDigest,
			"error", err)
	}
}
