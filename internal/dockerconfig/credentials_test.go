package dockerconfig

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_MissingFileYieldsEmptyStore(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	creds := store.Lookup("registry.example.com")
	assert.False(t, creds.HasCredentials())
}

func TestLoad_InvalidJSONIsAnError(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLookup_DirectMatch(t *testing.T) {
	path := writeConfig(t, `{"auths":{"registry.example.com":{"username":"alice","password":"secret"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.True(t, creds.HasCredentials())
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "secret", creds.Password)
}

func TestLookup_NormalizedMatch(t *testing.T) {
	path := writeConfig(t, `{"auths":{"https://registry.example.com/v2/":{"username":"alice","password":"secret"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.True(t, creds.HasCredentials())
}

func TestLookup_DockerHubAlias(t *testing.T) {
	path := writeConfig(t, `{"auths":{"https://index.docker.io/v1/":{"username":"alice","password":"secret"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("docker.io")
	assert.True(t, creds.HasCredentials())
	assert.Equal(t, "alice", creds.Username)
}

func TestLookup_HTTPSVariant(t *testing.T) {
	path := writeConfig(t, `{"auths":{"https://registry.example.com":{"username":"bob","password":"pw"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.True(t, creds.HasCredentials())
	assert.Equal(t, "bob", creds.Username)
}

func TestLookup_AuthFieldDecoded(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("carol:hunter2"))
	path := writeConfig(t, `{"auths":{"registry.example.com":{"auth":"`+encoded+`"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.Equal(t, "carol", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestLookup_IdentityTokenTakesPrecedence(t *testing.T) {
	path := writeConfig(t, `{"auths":{"registry.example.com":{"username":"ignored","password":"ignored","identitytoken":"tok-abc"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.Equal(t, "<token>", creds.Username)
	assert.Equal(t, "tok-abc", creds.Password)
}

func TestLookup_RegistryTokenTakesPrecedenceOverAuth(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("carol:hunter2"))
	path := writeConfig(t, `{"auths":{"registry.example.com":{"auth":"`+encoded+`","registrytoken":"tok-xyz"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.Equal(t, "tok-xyz", creds.Password)
}

func TestLookup_NoMatchReturnsEmptyCredentials(t *testing.T) {
	path := writeConfig(t, `{"auths":{"other.example.com":{"username":"a","password":"b"}}}`)
	store, err := Load(path)
	require.NoError(t, err)

	creds := store.Lookup("registry.example.com")
	assert.False(t, creds.HasCredentials())
}

func TestLookup_NilStoreIsSafe(t *testing.T) {
	var store *Store
	assert.False(t, store.Lookup("registry.example.com").HasCredentials())
}

func TestCachedLoader_MemoizesPerPath(t *testing.T) {
	path := writeConfig(t, `{"auths":{"registry.example.com":{"username":"alice","password":"secret"}}}`)
	loader := NewCachedLoader()

	first, err := loader.Load(path)
	require.NoError(t, err)
	second, err := loader.Load(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
}
