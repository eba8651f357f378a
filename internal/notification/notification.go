// Package notification handles sending notifications to external services.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/relaydeploy/relay/internal/config"
	"github.com/relaydeploy/relay/internal/model"
)

// UpdateSummary describes one container's outcome within a cycle, for
// inclusion in the per-cycle digest.
type UpdateSummary struct {
	ContainerName     string
	ImageReference    string
	OldDigest         string
	NewDigest         string
	NewImageReference string
	Failed            bool
	Reason            string
}

// Notifier handles sending notifications via Shoutrrr.
type Notifier struct {
	enabled     bool
	shoutrrrURL string
}

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.Notification.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.Notification.ShoutrrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:     true,
		shoutrrrURL: url,
	}, nil
}

// NotifyCycle delivers a per-cycle digest of updated and failed containers
// via the configured notification channel. It is a no-op when disabled or
// when the cycle had nothing to report — a fully quiet cycle never sends
// a notification.
func (n *Notifier) NotifyCycle(counters model.CycleCounters, updates []UpdateSummary) error {
	if !n.enabled {
		return nil
	}
	if counters.Updated+counters.Failed == 0 {
		return nil
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var sb strings.Builder
	sb.WriteString("relay cycle complete\n")
	sb.WriteString(fmt.Sprintf("time: %s\n", timestamp))
	sb.WriteString(fmt.Sprintf("checked: %d  updated: %d  failed: %d\n", counters.Checked, counters.Updated, counters.Failed))
	sb.WriteString("\n")

	for _, u := range updates {
		if u.Failed {
			sb.WriteString(fmt.Sprintf("failed: %s (%s): %s\n", u.ContainerName, u.ImageReference, u.Reason))
			continue
		}
		sb.WriteString(fmt.Sprintf("updated: %s: %s (%s) -> %s (%s)\n",
			u.ContainerName, u.ImageReference, u.OldDigest, u.NewImageReference, u.NewDigest))
	}

	if err := shoutrrr.Send(n.shoutrrrURL, sb.String()); err != nil {
		serviceType := "unknown"
		if idx := strings.Index(n.shoutrrrURL, "://"); idx > 0 {
			serviceType = n.shoutrrrURL[:idx]
		}
		return fmt.Errorf("notification failed to send via %s (checked: %d, updated: %d, failed: %d): %w",
			serviceType, counters.Checked, counters.Updated, counters.Failed, err)
	}

	return nil
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}
