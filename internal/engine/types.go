// Package engine wraps the container engine (Docker) with the narrow set
// of operations relay's detector and replacement engine need: listing
// monitored containers, inspecting and cloning their configuration, and
// driving the create/start/stop/remove/health-poll lifecycle a rolling
// replacement performs.
package engine

import (
	"context"
	"time"
)

// Container is a monitored container as returned by ListMonitored: enough
// identity and label data for the detector and replacement engine to act
// on, without exposing the full engine-native inspection shape.
type Container struct {
	ID             string
	Name           string
	ImageReference string
	ImageDigest    string
	Labels         map[string]string
}

// Inspection is the full configuration snapshot the replacement engine
// clones from when building a staging or successor container. Config,
// HostConfig and NetworkingConfig are opaque snapshots the engine client
// alone knows how to construct and reassemble; the replacement engine's
// only obligation is to mutate the handful of fields the spec calls out
// on the copies CloneForNewImage and CloneStagingHostConfig return.
type Inspection struct {
	Config           ConfigSnapshot
	HostConfig       HostConfigSnapshot
	NetworkingConfig NetworkingSnapshot
}

// Client is the abstract engine collaborator the detector, replacement
// engine and orchestrator depend on. All operations are cancellable via
// ctx. Implementations must treat "not found" as apperrors.ErrNotFound
// and container disappearance mid-operation as apperrors.ErrGone so
// callers can branch on them with errors.Is.
type Client interface {
	// ListMonitored returns running containers carrying
	// <enableLabelKey>=true, each already carrying the digest of the
	// image it is currently running.
	ListMonitored(ctx context.Context, enableLabelKey string) ([]Container, error)

	// Inspect returns the full configuration of id.
	Inspect(ctx context.Context, id string) (Inspection, error)

	// Pull pulls imageReference and returns the resulting local digest.
	Pull(ctx context.Context, imageReference string) (string, error)

	// LocalImageDigest returns the local digest for imageReference, or
	// ("", false) if the image is not present locally.
	LocalImageDigest(ctx context.Context, imageReference string) (string, bool, error)

	// CreateAndStart creates and starts a container named name from the
	// given configuration, returning its id.
	CreateAndStart(ctx context.Context, name string, config ConfigSnapshot, hostConfig HostConfigSnapshot, networking NetworkingSnapshot) (string, error)

	// CreateStagingAndStart is CreateAndStart with the additional
	// contract that hostConfig has had its port bindings stripped
	// (PortBindings nil, PublishAllPorts false) by the caller.
	CreateStagingAndStart(ctx context.Context, stagingName string, config ConfigSnapshot, hostConfig HostConfigSnapshot, networking NetworkingSnapshot) (string, error)

	// Stop gracefully stops id with a bounded kill timeout.
	Stop(ctx context.Context, id string) error

	// Remove removes a stopped container without touching anonymous
	// volumes.
	Remove(ctx context.Context, id string) error

	// ForceRemove best-effort stops then force-removes id, tolerating
	// "not found".
	ForceRemove(ctx context.Context, id string) error

	// WaitHealthy runs the health-gate state machine against id until it
	// reports healthy, unhealthy, exits, vanishes, or timeout elapses.
	WaitHealthy(ctx context.Context, id string, timeout, pollInterval time.Duration) (bool, error)

	// RemoveImage removes the image identified by digest, tolerating
	// "image in use".
	RemoveImage(ctx context.Context, digest string) error

	// ListDanglingImages returns the ids of images with no container
	// referencing them, for the prune command.
	ListDanglingImages(ctx context.Context) ([]string, error)

	Close() error
}
