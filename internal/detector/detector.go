// Package detector implements the update check: for each monitored
// container, decide whether a newer image is available and, if so, which
// reference and digest it resolves to.
package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/relaydeploy/relay/internal/engine"
	"github.com/relaydeploy/relay/internal/model"
	"github.com/relaydeploy/relay/internal/registry"
	"github.com/relaydeploy/relay/internal/semver"
)

// Kind tags which variant of Result was produced.
type Kind int

const (
	// NoUpdate means the container's current image is already current.
	NoUpdate Kind = iota
	// UpdateFound means a newer image reference/digest was found.
	UpdateFound
	// Failed means the check could not complete.
	Failed
)

// Result is the tagged outcome of a Check call. Only the fields relevant
// to Kind are populated.
type Result struct {
	Kind              Kind
	CurrentDigest     string
	NewDigest         string
	NewImageReference string
	Reason            string
}

func noUpdate() Result { return Result{Kind: NoUpdate} }

func updateFound(current, newDigest, newImageReference string) Result {
	return Result{Kind: UpdateFound, CurrentDigest: current, NewDigest: newDigest, NewImageReference: newImageReference}
}

func failed(reason string) Result {
	return Result{Kind: Failed, Reason: reason}
}

// RegistryTagsFunc fetches candidate tags for an image reference. It is
// satisfied by (*registry.Client).Tags, curried over the credentials
// lookup, and injected so tests can substitute a fake tag source.
type RegistryTagsFunc func(ctx context.Context, imageReference string) []string

// Check runs the digest or version-strategy detection path for c
// depending on its declared update strategy, per the update detector's
// contract: never panics on engine or registry failure, always resolves
// to exactly one Result variant.
func Check(ctx context.Context, c model.MonitoredContainer, eng engine.Client, tags RegistryTagsFunc) Result {
	strategy := c.Strategy()
	if !strategy.RequiresRegistryQuery() {
		return checkDigest(ctx, c, eng, c.ImageReference)
	}
	return checkVersion(ctx, c, eng, tags, strategy)
}

// checkDigest pulls imageReference and compares its resulting digest
// against the container's currently recorded digest.
func checkDigest(ctx context.Context, c model.MonitoredContainer, eng engine.Client, imageReference string) Result {
	latestDigest, err := eng.Pull(ctx, imageReference)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(ctxErr.Error())
		}
		return failed(fmt.Sprintf("Failed to pull image: %v", err))
	}

	if strings.EqualFold(latestDigest, c.ImageDigest) {
		return noUpdate()
	}
	return updateFound(c.ImageDigest, latestDigest, imageReference)
}

// checkVersion implements the Patch/Minor/Major strategy path: fetch
// candidate tags, ask the version resolver for the newest acceptable one,
// and fall back to the digest path whenever the tag list is empty or no
// tag qualifies — both cases where a digest probe is still meaningful.
func checkVersion(ctx context.Context, c model.MonitoredContainer, eng engine.Client, tags RegistryTagsFunc, strategy semver.UpdateStrategy) Result {
	candidates := tags(ctx, c.ImageReference)
	if len(candidates) == 0 {
		return checkDigest(ctx, c, eng, c.ImageReference)
	}

	chosenTag, found := semver.FindNewest(c.Tag(), candidates, strategy)
	if !found {
		return checkDigest(ctx, c, eng, c.ImageReference)
	}

	newImageReference := c.Repository() + ":" + chosenTag
	newDigest, err := eng.Pull(ctx, newImageReference)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(ctxErr.Error())
		}
		return failed(fmt.Sprintf("Failed to pull image: %v", err))
	}
	// A resolver-chosen tag always differs from the current tag, but two
	// distinct tags can still share a digest (e.g. "1.24" and "1.24.0"
	// both pointing at the same build) — guard on digest equality so
	// UpdateFound always carries a genuinely new digest.
	if strings.EqualFold(newDigest, c.ImageDigest) {
		return noUpdate()
	}
	return updateFound(c.ImageDigest, newDigest, newImageReference)
}

// TagsFrom curries a registry.Client and credentials lookup into a
// RegistryTagsFunc for Check.
func TagsFrom(client *registry.Client, credentials registry.CredentialsLookup) RegistryTagsFunc {
	return func(ctx context.Context, imageReference string) []string {
		return client.Tags(ctx, imageReference, credentials)
	}
}
