package engine

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/relaydeploy/relay/internal/apperrors"
)

// rawClient is the subset of *dockerclient.Client the engine wrapper
// calls. Declaring it narrows what NewClientWithInterface needs to fake
// in tests, mirroring the teacher's own Client-interface-plus-wrapper
// split.
type rawClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, id string) (container.InspectResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, name string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, id string, options container.StartOptions) error
	ContainerStop(ctx context.Context, id string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, id string, options container.RemoveOptions) error
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ImageInspect(ctx context.Context, ref string, opts ...dockerclient.ImageInspectOption) (image.InspectResponse, error)
	ImageRemove(ctx context.Context, ref string, options image.RemoveOptions) ([]image.DeleteResponse, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	Close() error
}

// dockerEngineClient wraps a rawClient with the domain-specific
// translation the engine.Client interface exposes: label filtering,
// digest extraction, config-snapshot construction, and the health-gate
// state machine.
type dockerEngineClient struct {
	raw         rawClient
	killTimeout time.Duration
	stopTimeout time.Duration
}

// NewClient connects to the Docker daemon at host (empty for the
// platform default local socket).
func NewClient(host string, timeout time.Duration) (Client, error) {
	opts := []dockerclient.Opt{dockerclient.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, dockerclient.WithHost(host))
	}
	if timeout > 0 {
		opts = append(opts, dockerclient.WithTimeout(timeout))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, &apperrors.EngineError{Operation: "connect", Target: host, Err: err}
	}
	return &dockerEngineClient{raw: cli, killTimeout: 10 * time.Second, stopTimeout: 5 * time.Second}, nil
}

// NewClientWithInterface is used for testing with a fake rawClient.
func NewClientWithInterface(raw rawClient) Client {
	return &dockerEngineClient{raw: raw, killTimeout: 10 * time.Second, stopTimeout: 5 * time.Second}
}

func (c *dockerEngineClient) Close() error {
	return c.raw.Close()
}

func (c *dockerEngineClient) ListMonitored(ctx context.Context, enableLabelKey string) ([]Container, error) {
	f := filters.NewArgs()
	f.Add("label", enableLabelKey+"=true")
	f.Add("status", "running")

	summaries, err := c.raw.ContainerList(ctx, container.ListOptions{Filters: f})
	if err != nil {
		return nil, &apperrors.EngineError{Operation: "list_monitored", Err: err}
	}

	result := make([]Container, 0, len(summaries))
	for _, s := range summaries {
		name := ""
		if len(s.Names) > 0 {
			name = strings.TrimPrefix(s.Names[0], "/")
		}
		result = append(result, Container{
			ID:             s.ID,
			Name:           name,
			ImageReference: s.Image,
			ImageDigest:    s.ImageID,
			Labels:         s.Labels,
		})
	}
	return result, nil
}

func (c *dockerEngineClient) Inspect(ctx context.Context, id string) (Inspection, error) {
	resp, err := c.raw.ContainerInspect(ctx, id)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return Inspection{}, apperrors.ErrNotFound
		}
		return Inspection{}, &apperrors.EngineError{Operation: "inspect", Target: id, Err: err}
	}

	var networking NetworkingSnapshot
	if resp.NetworkSettings != nil {
		networking = NewNetworkingSnapshot(&network.NetworkingConfig{EndpointsConfig: resp.NetworkSettings.Networks})
	}
	return Inspection{
		Config:           NewConfigSnapshot(resp.Config),
		HostConfig:       NewHostConfigSnapshot(resp.HostConfig),
		NetworkingConfig: networking,
	}, nil
}

func (c *dockerEngineClient) Pull(ctx context.Context, imageReference string) (string, error) {
	reader, err := c.raw.ImagePull(ctx, imageReference, image.PullOptions{})
	if err != nil {
		return "", &apperrors.EngineError{Operation: "pull", Target: imageReference, Err: err}
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", &apperrors.EngineError{Operation: "pull", Target: imageReference, Err: err}
	}

	digest, _, err := c.localImageDigest(ctx, imageReference)
	if err != nil {
		return "", &apperrors.EngineError{Operation: "pull", Target: imageReference, Err: err}
	}
	return digest, nil
}

func (c *dockerEngineClient) LocalImageDigest(ctx context.Context, imageReference string) (string, bool, error) {
	digest, ok, err := c.localImageDigest(ctx, imageReference)
	if err != nil {
		return "", false, &apperrors.EngineError{Operation: "local_image_digest", Target: imageReference, Err: err}
	}
	return digest, ok, nil
}

func (c *dockerEngineClient) localImageDigest(ctx context.Context, imageReference string) (string, bool, error) {
	inspect, err := c.raw.ImageInspect(ctx, imageReference)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(inspect.RepoDigests) == 0 {
		return inspect.ID, true, nil
	}
	return firstDigest(inspect.RepoDigests), true, nil
}

func firstDigest(repoDigests []string) string {
	ref := repoDigests[0]
	if idx := strings.LastIndex(ref, "@"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

func (c *dockerEngineClient) CreateAndStart(ctx context.Context, name string, config ConfigSnapshot, hostConfig HostConfigSnapshot, networking NetworkingSnapshot) (string, error) {
	return c.createAndStart(ctx, "create_and_start", name, config, hostConfig, networking)
}

func (c *dockerEngineClient) CreateStagingAndStart(ctx context.Context, stagingName string, config ConfigSnapshot, hostConfig HostConfigSnapshot, networking NetworkingSnapshot) (string, error) {
	return c.createAndStart(ctx, "create_staging_and_start", stagingName, config, hostConfig, networking)
}

func (c *dockerEngineClient) createAndStart(ctx context.Context, op, name string, config ConfigSnapshot, hostConfig HostConfigSnapshot, networking NetworkingSnapshot) (string, error) {
	created, err := c.raw.ContainerCreate(ctx, config.Native(), hostConfig.Native(), networking.Native(), nil, name)
	if err != nil {
		return "", &apperrors.EngineError{Operation: op, Target: name, Err: err}
	}
	if err := c.raw.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", &apperrors.EngineError{Operation: op, Target: name, Err: err}
	}
	return created.ID, nil
}

func (c *dockerEngineClient) Stop(ctx context.Context, id string) error {
	timeoutSeconds := int(c.killTimeout.Seconds())
	if err := c.raw.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeoutSeconds}); err != nil {
		if dockerclient.IsErrNotFound(err) {
			return apperrors.ErrGone
		}
		return &apperrors.EngineError{Operation: "stop", Target: id, Err: err}
	}
	return nil
}

func (c *dockerEngineClient) Remove(ctx context.Context, id string) error {
	if err := c.raw.ContainerRemove(ctx, id, container.RemoveOptions{RemoveVolumes: false}); err != nil {
		if dockerclient.IsErrNotFound(err) {
			return apperrors.ErrGone
		}
		return &apperrors.EngineError{Operation: "remove", Target: id, Err: err}
	}
	return nil
}

func (c *dockerEngineClient) ForceRemove(ctx context.Context, id string) error {
	stopCtx, cancel := context.WithTimeout(ctx, c.stopTimeout)
	defer cancel()
	timeoutSeconds := int(c.stopTimeout.Seconds())
	_ = c.raw.ContainerStop(stopCtx, id, container.StopOptions{Timeout: &timeoutSeconds})

	err := c.raw.ContainerRemove(ctx, id, container.RemoveOptions{Force: true, RemoveVolumes: false})
	if err != nil && !dockerclient.IsErrNotFound(err) {
		return &apperrors.EngineError{Operation: "force_remove", Target: id, Err: err}
	}
	return nil
}

func (c *dockerEngineClient) WaitHealthy(ctx context.Context, id string, timeout, pollInterval time.Duration) (bool, error) {
	return waitHealthy(ctx, timeout, pollInterval, c.observe, id)
}

func (c *dockerEngineClient) observe(ctx context.Context, id string) (observation, error) {
	resp, err := c.raw.ContainerInspect(ctx, id)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return observation{found: false}, nil
		}
		return observation{}, err
	}

	obs := observation{found: true}
	if resp.State != nil {
		obs.status = resp.State.Status
		if resp.State.Health != nil {
			obs.healthStatus = resp.State.Health.Status
		}
	}
	obs.hasHealthcheck = resp.Config != nil && resp.Config.Healthcheck != nil && len(resp.Config.Healthcheck.Test) > 0
	return obs, nil
}

func (c *dockerEngineClient) RemoveImage(ctx context.Context, digest string) error {
	_, err := c.raw.ImageRemove(ctx, digest, image.RemoveOptions{})
	if err != nil && !isImageInUse(err) && !dockerclient.IsErrNotFound(err) {
		return &apperrors.EngineError{Operation: "remove_image", Target: digest, Err: err}
	}
	return nil
}

func isImageInUse(err error) bool {
	return err != nil && strings.Contains(err.Error(), "image is being used")
}

func (c *dockerEngineClient) ListDanglingImages(ctx context.Context) ([]string, error) {
	f := filters.NewArgs()
	f.Add("dangling", "true")

	summaries, err := c.raw.ImageList(ctx, image.ListOptions{Filters: f})
	if err != nil {
		return nil, &apperrors.EngineError{Operation: "list_dangling_images", Err: err}
	}

	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids, nil
}
