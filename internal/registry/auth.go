package registry

import "strings"

// challenge holds the parsed fields of a WWW-Authenticate header the way
// the OCI distribution spec emits them, e.g.:
//
//	Bearer realm="https://auth.docker.io/token",service="registry.docker.io",scope="repository:library/nginx:pull"
type challenge struct {
	scheme string
	params map[string]string
}

// parseChallenge parses a single WWW-Authenticate header value. Parameters
// are parsed for any scheme, and params is never nil, so callers can branch
// on scheme and read params without a nil check.
func parseChallenge(header string) challenge {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return challenge{scheme: header, params: map[string]string{}}
	}

	c := challenge{scheme: scheme, params: map[string]string{}}
	for _, pair := range splitParams(rest) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key != "" {
			c.params[key] = value
		}
	}
	return c
}

// splitParams splits a comma-separated key=value list, respecting commas
// that fall inside double-quoted values (a scope parameter can itself list
// multiple space-separated actions but never contains a literal comma in
// practice, so a simple quote-aware split is sufficient here).
func splitParams(s string) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i, r := range s {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (c challenge) isBearer() bool {
	return strings.EqualFold(c.scheme, "Bearer")
}

func (c challenge) isBasic() bool {
	return strings.EqualFold(c.scheme, "Basic")
}
