package semver

// IsNewer reports whether candidate is a permitted upgrade from current
// under strategy. Digest never accepts a version bump; Patch requires the
// same major.minor; Minor requires the same major; Major accepts anything
// strictly greater.
func IsNewer(current, candidate Version, strategy UpdateStrategy) bool {
	if Compare(candidate, current) <= 0 {
		return false
	}

	switch strategy {
	case StrategyDigest:
		return false
	case StrategyPatch:
		return candidate.Major == current.Major && candidate.Minor == current.Minor
	case StrategyMinor:
		return candidate.Major == current.Major
	case StrategyMajor:
		return true
	default:
		return false
	}
}

// FindNewest picks the original tag string of the strategy-bounded newest
// candidate relative to currentTag. It returns false if currentTag is not
// itself a version, or if no candidate qualifies. Ties on the parsed triple
// are broken by keeping the first candidate encountered.
func FindNewest(currentTag string, candidates []string, strategy UpdateStrategy) (string, bool) {
	current, _, ok := Normalize(currentTag)
	if !ok {
		return "", false
	}

	var (
		bestTag string
		best    Version
		found   bool
	)

	for _, candidateTag := range candidates {
		candidate, _, ok := Normalize(candidateTag)
		if !ok {
			continue
		}
		if !IsNewer(current, candidate, strategy) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			bestTag = candidateTag
			found = true
		}
	}

	return bestTag, found
}
