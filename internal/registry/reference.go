package registry

import (
	"strings"

	distref "github.com/distribution/reference"
)

// dockerHubHosts are the host spellings that all resolve to Docker Hub's
// actual registry endpoint.
var dockerHubHosts = map[string]bool{
	"docker.io":            true,
	"index.docker.io":      true,
	"registry-1.docker.io": true,
}

// SplitHostRepository maps an image reference to (registry_host,
// repository) using the three-way rule from the registry client's
// contract: no slash means a Docker Hub library image; exactly one slash
// is a host only if its left side looks like one (contains '.' or ':');
// two or more slashes always start with a host segment.
func SplitHostRepository(imageReference string) (host, repository string) {
	repoOnly, _ := splitTag(imageReference)

	parts := strings.Split(repoOnly, "/")
	switch len(parts) {
	case 1:
		return "docker.io", normalizedRepository("library/" + parts[0])
	case 2:
		if looksLikeHost(parts[0]) {
			return parts[0], parts[1]
		}
		return "docker.io", normalizedRepository(repoOnly)
	default:
		return parts[0], strings.Join(parts[1:], "/")
	}
}

func looksLikeHost(segment string) bool {
	return strings.ContainsAny(segment, ".:")
}

// splitTag splits on the last ':' only when it appears after the last '/',
// matching the same rule model.SplitImageReference uses; kept local to
// avoid an import cycle between registry and model.
func splitTag(ref string) (repository, tag string) {
	lastSlash := strings.LastIndex(ref, "/")
	lastColon := strings.LastIndex(ref, ":")
	if lastColon > lastSlash {
		return ref[:lastColon], ref[lastColon+1:]
	}
	return ref, "latest"
}

// isDockerHub reports whether host is one of the recognized Docker Hub
// host spellings.
func isDockerHub(host string) bool {
	return dockerHubHosts[host]
}

// normalizedRepository validates repository using distribution/reference,
// the same reference-parsing library the Docker CLI itself uses, returning
// the input unchanged if it does not parse (the registry client's own
// three-way host/repository split above is authoritative; this is a
// best-effort sanity normalization only).
func normalizedRepository(repository string) string {
	named, err := distref.ParseNormalizedNamed(repository)
	if err != nil {
		return repository
	}
	return distref.Path(named)
}
