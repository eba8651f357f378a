package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a (major, minor, patch) triple. Build/prerelease suffixes are
// not represented here: this package keeps only the numeric ordering the
// resolver needs, never the full semver precedence rules.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b, comparing lexicographically on (Major, Minor, Patch).
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return sign(a.Major - b.Major)
	case a.Minor != b.Minor:
		return sign(a.Minor - b.Minor)
	default:
		return sign(a.Patch - b.Patch)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// nonVersionTags are rejected outright regardless of prefix stripping,
// matched case-insensitively.
var nonVersionTags = map[string]bool{
	"latest":  true,
	"stable":  true,
	"edge":    true,
	"dev":     true,
	"nightly": true,
}

// prefixes are tried longest-first so "release-" is preferred over "r" would
// be if it existed; "version-" must be tried before "v" so it is stripped
// whole rather than leaving "ersion-" behind.
var prefixes = []string{"version-", "release-", "v", "V"}

// Normalize parses a tag string into a Version. It returns the parsed
// version, the prefix that was stripped (possibly empty), and whether the
// tag was recognized as a version at all.
func Normalize(tag string) (Version, string, bool) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return Version{}, "", false
	}
	if nonVersionTags[strings.ToLower(trimmed)] {
		return Version{}, "", false
	}

	prefix := ""
	for _, p := range prefixes {
		if len(p) > len(prefix) && len(trimmed) > len(p) && strings.EqualFold(trimmed[:len(p)], p) {
			prefix = trimmed[:len(p)]
		}
	}
	rest := trimmed[len(prefix):]

	if v, ok := parseStrictSemver(rest); ok {
		return v, prefix, true
	}

	if v, ok := parseLooseTriple(rest); ok {
		return v, prefix, true
	}

	return Version{}, "", false
}

// parseStrictSemver accepts "major.minor.patch" with optional "-prerelease"
// and/or "+build" suffixes, ignoring both for ordering purposes.
func parseStrictSemver(s string) (Version, bool) {
	core := s
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, false
	}
	major, ok := parseNonNegativeInt(parts[0])
	if !ok {
		return Version{}, false
	}
	minor, ok := parseNonNegativeInt(parts[1])
	if !ok {
		return Version{}, false
	}
	patch, ok := parseNonNegativeInt(parts[2])
	if !ok {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor, Patch: patch}, true
}

// parseLooseTriple splits on '.', '-', '+' and accepts a partial triple as
// long as the first segment is a non-negative integer; missing components
// default to 0.
func parseLooseTriple(s string) (Version, bool) {
	segments := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '+'
	})
	if len(segments) == 0 {
		return Version{}, false
	}

	major, ok := parseNonNegativeInt(segments[0])
	if !ok {
		return Version{}, false
	}

	minor := 0
	if len(segments) > 1 {
		if m, ok := parseNonNegativeInt(segments[1]); ok {
			minor = m
		}
	}

	patch := 0
	if len(segments) > 2 {
		if p, ok := parseNonNegativeInt(segments[2]); ok {
			patch = p
		}
	}

	return Version{Major: major, Minor: minor, Patch: patch}, true
}

func parseNonNegativeInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
