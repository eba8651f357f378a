// Package dockerconfig reads container-engine credential files
// (config.json) and resolves them against a registry host, following the
// same key-matching cascade the engine's own credential helper uses.
package dockerconfig

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/relaydeploy/relay/internal/apperrors"
	"github.com/relaydeploy/relay/internal/registry"
)

// dockerHubAliases are the registry-key spellings config.json commonly
// stores Docker Hub credentials under.
var dockerHubAliases = []string{
	"docker.io",
	"index.docker.io",
	"registry-1.docker.io",
	"https://index.docker.io/v1/",
	"https://index.docker.io/v2/",
}

type rawAuthEntry struct {
	Auth          string `json:"auth"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	IdentityToken string `json:"identitytoken"`
	RegistryToken string `json:"registrytoken"`
}

type rawConfigFile struct {
	Auths map[string]rawAuthEntry `json:"auths"`
}

// Store holds the parsed contents of one config.json, keyed exactly as it
// appears on disk. Lookups apply the matching cascade at query time so a
// single Store instance answers every registry host that path ever needs.
type Store struct {
	entries map[string]rawAuthEntry
}

// Load reads and parses the config.json at path. A missing file is not an
// error: it yields an empty Store, since operating without engine
// credentials is a valid and common configuration.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{entries: map[string]rawAuthEntry{}}, nil
	}
	if err != nil {
		return nil, &apperrors.ConfigurationError{ConfigPath: path, Key: "auths", Err: err}
	}

	var parsed rawConfigFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &apperrors.ConfigurationError{ConfigPath: path, Key: "auths", Err: err}
	}
	if parsed.Auths == nil {
		parsed.Auths = map[string]rawAuthEntry{}
	}
	return &Store{entries: parsed.Auths}, nil
}

// Lookup resolves registryHost to credentials using the direct →
// normalized → Docker Hub alias → https variants cascade. It always
// returns a value; a registry with no matching entry yields a zero
// registry.Credentials, which HasCredentials reports as false.
func (s *Store) Lookup(registryHost string) registry.Credentials {
	if s == nil {
		return registry.Credentials{}
	}

	for _, key := range candidateKeys(registryHost) {
		if entry, ok := s.entries[key]; ok {
			return decode(entry)
		}
	}
	return registry.Credentials{}
}

// candidateKeys enumerates registry-key spellings to try, in the exact
// precedence order the engine credentials source defines: the host as
// given, its normalized form, the Docker Hub alias set (only when the
// normalized host is a Docker Hub spelling), then https variants of the
// host itself.
func candidateKeys(host string) []string {
	normalized := normalizeKey(host)

	keys := []string{host}
	if normalized != host {
		keys = append(keys, normalized)
	}
	if isDockerHubSpelling(normalized) {
		keys = append(keys, dockerHubAliases...)
	}
	keys = append(keys,
		"https://"+normalized,
		"https://"+normalized+"/v1/",
		"https://"+normalized+"/v2/",
	)
	return keys
}

func isDockerHubSpelling(host string) bool {
	switch host {
	case "docker.io", "index.docker.io", "registry-1.docker.io":
		return true
	default:
		return false
	}
}

// normalizeKey strips a leading scheme and a trailing "/", "/v1/" or
// "/v2/" suffix from a registry key, the same normalization config.json
// keys are matched against.
func normalizeKey(key string) string {
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimSuffix(key, "/v2/")
	key = strings.TrimSuffix(key, "/v1/")
	key = strings.TrimSuffix(key, "/")
	return key
}

func decode(entry rawAuthEntry) registry.Credentials {
	if entry.IdentityToken != "" {
		return registry.Credentials{Username: "<token>", Password: entry.IdentityToken}
	}
	if entry.RegistryToken != "" {
		return registry.Credentials{Username: "<token>", Password: entry.RegistryToken}
	}
	if entry.Username != "" || entry.Password != "" {
		return registry.Credentials{Username: entry.Username, Password: entry.Password}
	}
	if entry.Auth != "" {
		if user, pass, ok := decodeBasicAuth(entry.Auth); ok {
			return registry.Credentials{Username: user, Password: pass}
		}
	}
	return registry.Credentials{}
}

func decodeBasicAuth(encoded string) (username, password string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	user, pass, found := strings.Cut(string(raw), ":")
	if !found {
		return "", "", false
	}
	return user, pass, true
}

// CachedLoader memoizes Store instances per config path behind a lock, so
// the many per-cycle credential lookups the detector and registry client
// perform don't re-read and re-parse config.json on every call.
type CachedLoader struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewCachedLoader returns an empty CachedLoader.
func NewCachedLoader() *CachedLoader {
	return &CachedLoader{stores: map[string]*Store{}}
}

// Load returns the Store for path, parsing and caching it on first use.
func (l *CachedLoader) Load(path string) (*Store, error) {
	l.mu.RLock()
	store, ok := l.stores[path]
	l.mu.RUnlock()
	if ok {
		return store, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if store, ok := l.stores[path]; ok {
		return store, nil
	}

	store, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.stores[path] = store
	return store, nil
}
