// Package labels decodes the operator-facing container labels that opt a
// container into monitoring and declare its update policy.
package labels

import (
	"strconv"
	"strings"
	"time"

	"github.com/relaydeploy/relay/internal/semver"
)

// Fixed label keys. Only the enable-label key itself is configurable
// (passed to IsEnabled); the policy labels are not.
const (
	UpdateLabel             = "relay.update"
	HealthcheckTimeoutLabel = "relay.healthcheck.timeout"
	DefaultEnableLabelKey   = "relay.enable"
)

// IsEnabled reports whether labels opts a container into monitoring under
// the given enable-label key. Any value other than the literal string
// "true", or a missing key, excludes the container.
func IsEnabled(container map[string]string, enableLabelKey string) bool {
	return container[enableLabelKey] == "true"
}

// Strategy reads relay.update and maps it to an UpdateStrategy, defaulting
// to StrategyDigest for an unset or unrecognized value.
func Strategy(container map[string]string) semver.UpdateStrategy {
	return semver.ParseStrategy(container[UpdateLabel])
}

// HealthcheckTimeoutOverride reads relay.healthcheck.timeout as a positive
// integer number of seconds. It returns false if the label is absent,
// non-integer, zero, or negative.
func HealthcheckTimeoutOverride(container map[string]string) (time.Duration, bool) {
	raw, present := container[HealthcheckTimeoutLabel]
	if !present {
		return 0, false
	}
	raw = strings.TrimSpace(raw)

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, false
	}

	return time.Duration(seconds) * time.Second, true
}
