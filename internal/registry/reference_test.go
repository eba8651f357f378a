package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHostRepository(t *testing.T) {
	cases := []struct {
		ref      string
		wantHost string
		wantRepo string
	}{
		{"nginx", "docker.io", "library/nginx"},
		{"nginx:1.25.0", "docker.io", "library/nginx"},
		{"library/nginx", "docker.io", "library/nginx"},
		{"myuser/myapp", "docker.io", "myuser/myapp"},
		{"registry.example.com/team/app", "registry.example.com", "team/app"},
		{"registry.example.com:5000/team/app:v2", "registry.example.com:5000", "team/app"},
		{"localhost:5000/app", "localhost:5000", "app"},
		{"ghcr.io/org/team/app", "ghcr.io", "org/team/app"},
	}
	for _, tc := range cases {
		host, repo := SplitHostRepository(tc.ref)
		assert.Equal(t, tc.wantHost, host, tc.ref)
		assert.Equal(t, tc.wantRepo, repo, tc.ref)
	}
}

func TestIsDockerHub(t *testing.T) {
	assert.True(t, isDockerHub("docker.io"))
	assert.True(t, isDockerHub("index.docker.io"))
	assert.True(t, isDockerHub("registry-1.docker.io"))
	assert.False(t, isDockerHub("ghcr.io"))
	assert.False(t, isDockerHub("registry.example.com"))
}
