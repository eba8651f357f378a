// Package registry implements the OCI distribution v2 tag listing used to
// discover candidate update tags for a monitored image.
package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/relaydeploy/relay/internal/apperrors"
)

// Credentials carries the username/password a registry request may need.
// HasCredentials is true iff both fields are non-empty, matching the
// engine credentials source's own contract.
type Credentials struct {
	Username string
	Password string
}

// HasCredentials reports whether both username and password were supplied.
func (c Credentials) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// CredentialsLookup resolves a registry host to the credentials that
// should be used against it. It always returns a value; missing
// credentials are represented by a zero Credentials, never an error.
type CredentialsLookup func(registryHost string) Credentials

type tagsResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Client lists tags for image repositories across the Docker Hub host
// family and arbitrary OCI-compliant registries, handling both the Docker
// Hub bearer-token shortcut and the generic WWW-Authenticate challenge
// flow. A Client is safe for concurrent use; it holds no mutable state
// beyond its *http.Client. Log is optional and defaults to slog.Default();
// token, unauthenticated-request and challenge failures that Tags folds
// into an empty slice are logged there for an operator wondering why an
// update never showed up. A failed tags request made with a token or Basic
// credentials returns an empty slice without a log line.
type Client struct {
	httpClient *http.Client
	Log        *slog.Logger
}

// NewClient returns a Client with a bounded per-request timeout. The
// timeout applies per HTTP round trip (token fetch and tags fetch are
// each bounded independently), not to the call as a whole.
func NewClient(requestTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: requestTimeout}}
}

func (c *Client) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

// Tags returns the tag list for imageReference's repository. It never
// returns an error: any network, authentication, or decoding failure is
// represented by a nil/empty slice, matching the registry client's
// contract that failure here is a soft signal, not a hard one.
func (c *Client) Tags(ctx context.Context, imageReference string, lookup CredentialsLookup) []string {
	host, repository := SplitHostRepository(imageReference)
	if lookup == nil {
		lookup = func(string) Credentials { return Credentials{} }
	}
	creds := lookup(host)

	if isDockerHub(host) {
		return c.tagsFromDockerHub(ctx, repository, creds)
	}
	return c.tagsFromGenericHost(ctx, host, repository, creds)
}

func (c *Client) tagsFromDockerHub(ctx context.Context, repository string, creds Credentials) []string {
	token, err := c.fetchToken(ctx, "https://auth.docker.io/token", "registry.docker.io", "repository:"+repository+":pull", creds)
	if err != nil {
		c.logFailure("registry-1.docker.io", repository, err)
		return nil
	}
	return c.fetchTags(ctx, "https://registry-1.docker.io", repository, bearerHeader(token))
}

func (c *Client) tagsFromGenericHost(ctx context.Context, host, repository string, creds Credentials) []string {
	base := "https://" + host

	tags, status, wwwAuth := c.tryFetchTags(ctx, base, repository, nil)
	if status == http.StatusOK {
		return tags
	}
	if status != http.StatusUnauthorized {
		c.logFailure(host, repository, fmt.Errorf("unauthenticated tags request returned status %d", status))
		return nil
	}

	ch := parseChallenge(wwwAuth)
	switch {
	case ch.isBearer():
		realm := ch.params["realm"]
		service := ch.params["service"]
		scope := ch.params["scope"]
		if scope == "" {
			scope = "repository:" + repository + ":pull"
		}
		if realm == "" {
			c.logFailure(host, repository, fmt.Errorf("bearer challenge missing realm"))
			return nil
		}
		token, err := c.fetchToken(ctx, realm, service, scope, creds)
		if err != nil {
			c.logFailure(host, repository, err)
			return nil
		}
		return c.fetchTags(ctx, base, repository, bearerHeader(token))
	case ch.isBasic():
		if !creds.HasCredentials() {
			c.logFailure(host, repository, apperrors.ErrNoCredentials)
			return nil
		}
		return c.fetchTags(ctx, base, repository, basicHeader(creds))
	default:
		c.logFailure(host, repository, fmt.Errorf("unrecognized WWW-Authenticate scheme"))
		return nil
	}
}

// logFailure records a soft Tags failure as a RegistryError. Tags itself
// never returns an error — this is the only place that context reaches an
// operator.
func (c *Client) logFailure(host, repository string, err error) {
	c.logger().Warn("registry tag lookup failed",
		"error", &apperrors.RegistryError{Host: host, Repository: repository, Err: err})
}

// tryFetchTags issues the unauthenticated request and additionally surfaces
// the raw HTTP status and WWW-Authenticate header so the caller can decide
// how to retry, since a 401 here is an expected branch, not a failure.
func (c *Client) tryFetchTags(ctx context.Context, base, repository string, extraHeader map[string]string) (tags []string, status int, wwwAuthenticate string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/v2/"+repository+"/tags/list", nil)
	if err != nil {
		return nil, 0, ""
	}
	for k, v := range extraHeader {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, resp.Header.Get("WWW-Authenticate")
	}

	var parsed tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, resp.StatusCode, ""
	}
	return parsed.Tags, resp.StatusCode, ""
}

func (c *Client) fetchTags(ctx context.Context, base, repository string, header map[string]string) []string {
	tags, status, _ := c.tryFetchTags(ctx, base, repository, header)
	if status != http.StatusOK {
		return nil
	}
	return tags
}

func (c *Client) fetchToken(ctx context.Context, realm, service, scope string, creds Credentials) (string, error) {
	query := url.Values{}
	if service != "" {
		query.Set("service", service)
	}
	if scope != "" {
		query.Set("scope", scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, realm+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	if creds.HasCredentials() {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token from %s: %w", realm, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint %s returned %d", realm, resp.StatusCode)
	}

	var parsed struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.Token != "" {
		return parsed.Token, nil
	}
	if parsed.AccessToken != "" {
		return parsed.AccessToken, nil
	}
	return "", fmt.Errorf("token endpoint %s returned no token", realm)
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func basicHeader(creds Credentials) map[string]string {
	raw := creds.Username + ":" + creds.Password
	return map[string]string{"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))}
}
