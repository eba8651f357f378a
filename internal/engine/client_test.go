package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydeploy/relay/internal/apperrors"
)

// fakeRawClient implements rawClient for tests, exercising the same
// NewClientWithInterface substitution seam the teacher's docker package
// uses to test without a live daemon.
type fakeRawClient struct {
	listResult     []container.Summary
	listErr        error
	inspectResult  container.InspectResponse
	inspectErr     error
	pullErr        error
	imageInspect   image.InspectResponse
	imageErr       error
	createID       string
	createErr      error
	startErr       error
	stopErr        error
	removeErr      error
	imageRemoveErr error
	danglingImages []image.Summary

	lastCreatedHostConfig *container.HostConfig
	lastCreatedName       string
	stopCalls             int
	removeCalls           int
}

func (f *fakeRawClient) ContainerList(context.Context, container.ListOptions) ([]container.Summary, error) {
	return f.listResult, f.listErr
}

func (f *fakeRawClient) ContainerInspect(context.Context, string) (container.InspectResponse, error) {
	return f.inspectResult, f.inspectErr
}

func (f *fakeRawClient) ContainerCreate(_ context.Context, _ *container.Config, hostConfig *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.lastCreatedHostConfig = hostConfig
	f.lastCreatedName = name
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	return container.CreateResponse{ID: f.createID}, nil
}

func (f *fakeRawClient) ContainerStart(context.Context, string, container.StartOptions) error {
	return f.startErr
}

func (f *fakeRawClient) ContainerStop(context.Context, string, container.StopOptions) error {
	f.stopCalls++
	return f.stopErr
}

func (f *fakeRawClient) ContainerRemove(context.Context, string, container.RemoveOptions) error {
	f.removeCalls++
	return f.removeErr
}

func (f *fakeRawClient) ImagePull(context.Context, string, image.PullOptions) (io.ReadCloser, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeRawClient) ImageInspect(context.Context, string, ...dockerclient.ImageInspectOption) (image.InspectResponse, error) {
	return f.imageInspect, f.imageErr
}

func (f *fakeRawClient) ImageRemove(context.Context, string, image.RemoveOptions) ([]image.DeleteResponse, error) {
	return nil, f.imageRemoveErr
}

func (f *fakeRawClient) ImageList(context.Context, image.ListOptions) ([]image.Summary, error) {
	return f.danglingImages, nil
}

func (f *fakeRawClient) Close() error { return nil }

func TestListMonitored_StripsLeadingSlashFromName(t *testing.T) {
	fake := &fakeRawClient{listResult: []container.Summary{
		{ID: "abc", Names: []string{"/web"}, Image: "nginx:1.25.0", ImageID: "sha256:deadbeef", Labels: map[string]string{"relay.enable": "true"}},
	}}
	c := NewClientWithInterface(fake)

	containers, err := c.ListMonitored(t.Context(), "relay.enable")
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "web", containers[0].Name)
	assert.Equal(t, "nginx:1.25.0", containers[0].ImageReference)
	assert.Equal(t, "sha256:deadbeef", containers[0].ImageDigest)
}

func TestInspect_NotFoundMapsToErrNotFound(t *testing.T) {
	fake := &fakeRawClient{inspectErr: notFoundError{}}
	c := NewClientWithInterface(fake)

	_, err := c.Inspect(t.Context(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPull_ExtractsDigestFromRepoDigests(t *testing.T) {
	fake := &fakeRawClient{
		imageInspect: image.InspectResponse{
			RepoDigests: []string{"nginx@sha256:deadbeef"},
		},
	}
	c := NewClientWithInterface(fake)

	digest, err := c.Pull(t.Context(), "nginx:1.25.0")
	require.NoError(t, err)
	assert.Equal(t, "sha256:deadbeef", digest)
}

func TestLocalImageDigest_MissingImageIsNotAnError(t *testing.T) {
	fake := &fakeRawClient{imageErr: notFoundError{}}
	c := NewClientWithInterface(fake)

	digest, ok, err := c.LocalImageDigest(t.Context(), "nginx:1.25.0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, digest)
}

func TestCreateStagingAndStart_PassesHostConfigThrough(t *testing.T) {
	fake := &fakeRawClient{createID: "staging-1"}
	c := NewClientWithInterface(fake)

	hc := NewHostConfigSnapshot(&container.HostConfig{PortBindings: nil, PublishAllPorts: false})
	id, err := c.CreateStagingAndStart(t.Context(), "web-relay-staging", ConfigSnapshot{}, hc, NetworkingSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, "staging-1", id)
	assert.Equal(t, "web-relay-staging", fake.lastCreatedName)
	require.NotNil(t, fake.lastCreatedHostConfig)
	assert.Nil(t, fake.lastCreatedHostConfig.PortBindings)
	assert.False(t, fake.lastCreatedHostConfig.PublishAllPorts)
}

func TestForceRemove_StopsThenForceRemoves(t *testing.T) {
	fake := &fakeRawClient{}
	c := NewClientWithInterface(fake)

	err := c.ForceRemove(t.Context(), "staging-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.stopCalls)
	assert.Equal(t, 1, fake.removeCalls)
}

func TestForceRemove_ToleratesNotFound(t *testing.T) {
	fake := &fakeRawClient{removeErr: notFoundError{}}
	c := NewClientWithInterface(fake)

	err := c.ForceRemove(t.Context(), "staging-1")
	assert.NoError(t, err)
}

func TestRemoveImage_ToleratesImageInUse(t *testing.T) {
	fake := &fakeRawClient{imageRemoveErr: errors.New("conflict: unable to delete, image is being used by running container")}
	c := NewClientWithInterface(fake)

	err := c.RemoveImage(t.Context(), "sha256:deadbeef")
	assert.NoError(t, err)
}

func TestRemoveImage_PropagatesOtherErrors(t *testing.T) {
	fake := &fakeRawClient{imageRemoveErr: errors.New("permission denied")}
	c := NewClientWithInterface(fake)

	err := c.RemoveImage(t.Context(), "sha256:deadbeef")
	assert.Error(t, err)
}

func TestListDanglingImages(t *testing.T) {
	fake := &fakeRawClient{danglingImages: []image.Summary{{ID: "img1"}, {ID: "img2"}}}
	c := NewClientWithInterface(fake)

	ids, err := c.ListDanglingImages(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"img1", "img2"}, ids)
}

// notFoundError satisfies dockerclient.IsErrNotFound's expected
// errdefs.ErrNotFound interface (a NotFound() bool method), the same
// contract the real Docker client's not-found errors implement.
type notFoundError struct{}

func (notFoundError) Error() string  { return "not found" }
func (notFoundError) NotFound() bool { return true }
