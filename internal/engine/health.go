package engine

import (
	"context"
	"time"
)

// healthGracePeriod is how long a container without a declared
// healthcheck must report status "running" continuously before it is
// considered healthy.
const healthGracePeriod = 5 * time.Second

// observation is one poll's worth of state for the health-gate state
// machine: the container's lifecycle status, whether it declares a
// healthcheck, and — when it does — Docker's own health verdict.
type observation struct {
	found          bool
	status         string // "running", "exited", "dead", ...
	hasHealthcheck bool
	healthStatus   string // "starting", "healthy", "unhealthy" when hasHealthcheck
}

// pollFunc fetches one observation of id, cancellable via ctx.
type pollFunc func(ctx context.Context, id string) (observation, error)

// waitHealthy implements the health-gate state machine: Starting/Running
// (no healthcheck)/HealthStarting/Healthy/Unhealthy/Exited/Gone, polling
// at interval until either a terminal state is reached or timeout
// elapses. It never returns an error for lifecycle transitions — only
// ctx cancellation and poll failures propagate as errors, matching the
// spec's "cancellation propagates without a rollback attempt" contract.
func waitHealthy(ctx context.Context, timeout, interval time.Duration, poll pollFunc, id string) (bool, error) {
	deadline := time.Now().Add(timeout)
	var graceStart time.Time

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		obs, err := poll(ctx, id)
		if err != nil {
			return false, err
		}

		switch {
		case !obs.found:
			return false, nil // Gone
		case obs.status == "exited" || obs.status == "dead":
			return false, nil // Exited
		case obs.hasHealthcheck && obs.healthStatus == "healthy":
			return true, nil
		case obs.hasHealthcheck && obs.healthStatus == "unhealthy":
			return false, nil
		case obs.hasHealthcheck:
			// HealthStarting: keep polling.
		case obs.status == "running":
			if graceStart.IsZero() {
				graceStart = time.Now()
			}
			if time.Since(graceStart) >= healthGracePeriod {
				return true, nil
			}
		default:
			graceStart = time.Time{}
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}
