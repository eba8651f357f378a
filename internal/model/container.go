// Package model holds the core data types shared across relay's detector,
// resolver, and replacement engine.
package model

import (
	"strings"
	"time"

	"github.com/relaydeploy/relay/internal/labels"
	"github.com/relaydeploy/relay/internal/semver"
)

// MonitoredContainer identifies one workload selected for monitoring. It is
// immutable once constructed by the engine client's listing and is
// discarded at the end of the cycle that produced it.
type MonitoredContainer struct {
	ID             string
	Name           string
	ImageReference string
	ImageDigest    string
	Labels         map[string]string
}

// Repository returns the repository portion of ImageReference.
func (c MonitoredContainer) Repository() string {
	repo, _ := SplitImageReference(c.ImageReference)
	return repo
}

// Tag returns the tag portion of ImageReference, defaulting to "latest".
func (c MonitoredContainer) Tag() string {
	_, tag := SplitImageReference(c.ImageReference)
	return tag
}

// Strategy returns the update strategy declared by this container's labels.
func (c MonitoredContainer) Strategy() semver.UpdateStrategy {
	return labels.Strategy(c.Labels)
}

// HealthcheckTimeoutOverride returns the per-container healthcheck timeout
// override declared by labels, if any.
func (c MonitoredContainer) HealthcheckTimeoutOverride() (time.Duration, bool) {
	return labels.HealthcheckTimeoutOverride(c.Labels)
}

// StagingName is the fixed-shape name used for the health-probe container
// created during a rolling replacement.
func (c MonitoredContainer) StagingName() string {
	return c.Name + "-relay-staging"
}

// SplitImageReference splits an image reference into (repository, tag).
// The split happens on the last ':' only when it occurs after the last
// '/', so a registry port (host:port/path) is never mistaken for a tag
// separator. A reference with no tag defaults to "latest".
func SplitImageReference(ref string) (repository, tag string) {
	lastSlash := strings.LastIndex(ref, "/")
	lastColon := strings.LastIndex(ref, ":")

	if lastColon > lastSlash {
		return ref[:lastColon], ref[lastColon+1:]
	}
	return ref, "latest"
}
