// Package notification handles sending notifications to external services.
package notification

import (
	"strings"
	"testing"

	"github.com/relaydeploy/relay/internal/config"
	"github.com/relaydeploy/relay/internal/model"
)

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
		wantErr     bool
	}{
		{
			name:        "notifications disabled",
			cfg:         &config.Config{Notification: config.NotificationConfig{Enabled: false, ShoutrrrURL: ""}},
			wantEnabled: false,
		},
		{
			name:        "notifications disabled with URL set",
			cfg:         &config.Config{Notification: config.NotificationConfig{Enabled: false, ShoutrrrURL: "slack://token@channel"}},
			wantEnabled: false,
		},
		{
			name:    "notifications enabled without URL",
			cfg:     &config.Config{Notification: config.NotificationConfig{Enabled: true, ShoutrrrURL: ""}},
			wantErr: true,
		},
		{
			name:    "notifications enabled with whitespace-only URL",
			cfg:     &config.Config{Notification: config.NotificationConfig{Enabled: true, ShoutrrrURL: "   "}},
			wantErr: true,
		},
		{
			name:        "notifications enabled with URL",
			cfg:         &config.Config{Notification: config.NotificationConfig{Enabled: true, ShoutrrrURL: "slack://token@channel"}},
			wantEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier, err := NewNotifier(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewNotifier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if notifier == nil {
				t.Fatal("NewNotifier() returned nil notifier")
			}
			if notifier.enabled != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", notifier.enabled, tt.wantEnabled)
			}
		})
	}
}

func TestNotifier_IsEnabled(t *testing.T) {
	assert := func(n *Notifier, want bool) {
		if n.IsEnabled() != want {
			t.Errorf("IsEnabled() = %v, want %v", n.IsEnabled(), want)
		}
	}
	assert(&Notifier{enabled: true, shoutrrrURL: "slack://token@channel"}, true)
	assert(&Notifier{enabled: false}, false)
	assert(&Notifier{}, false)
}

func TestNotifyCycle_DisabledIsNoop(t *testing.T) {
	n := &Notifier{enabled: false}
	err := n.NotifyCycle(model.CycleCounters{Checked: 3, Updated: 2}, []UpdateSummary{{ContainerName: "web"}})
	if err != nil {
		t.Errorf("NotifyCycle() on disabled notifier should return nil, got: %v", err)
	}
}

func TestNotifyCycle_QuietCycleSendsNothing(t *testing.T) {
	n := &Notifier{enabled: true, shoutrrrURL: "invalid://this-would-fail-if-called"}
	err := n.NotifyCycle(model.CycleCounters{Checked: 5, Updated: 0, Failed: 0}, nil)
	if err != nil {
		t.Errorf("a fully quiet cycle must never attempt to send, got: %v", err)
	}
}

func TestNotifyCycle_UpdatedCycleAttemptsSend(t *testing.T) {
	n := &Notifier{enabled: true, shoutrrrURL: "invalid://malformed"}
	err := n.NotifyCycle(model.CycleCounters{Checked: 1, Updated: 1}, []UpdateSummary{
		{ContainerName: "web", ImageReference: "nginx:1.24.0", OldDigest: "sha256:old", NewImageReference: "nginx:1.25.0", NewDigest: "sha256:new"},
	})
	if err == nil {
		t.Fatal("expected an error from an invalid shoutrrr URL")
	}
	if !strings.Contains(err.Error(), "notification failed") {
		t.Errorf("error should be wrapped with 'notification failed', got: %v", err)
	}
}

func TestNotifyCycle_FailedCycleAttemptsSend(t *testing.T) {
	n := &Notifier{enabled: true, shoutrrrURL: "invalid://malformed"}
	err := n.NotifyCycle(model.CycleCounters{Checked: 1, Failed: 1}, []UpdateSummary{
		{ContainerName: "web", ImageReference: "nginx:1.24.0", Failed: true, Reason: "pull failed"},
	})
	if err == nil {
		t.Fatal("expected an error from an invalid shoutrrr URL")
	}
}

func TestNewNotifier_ErrorMessage(t *testing.T) {
	cfg := &config.Config{Notification: config.NotificationConfig{Enabled: true, ShoutrrrURL: ""}}

	_, err := NewNotifier(cfg)
	if err == nil {
		t.Fatal("expected error when notification enabled but URL not configured")
	}

	expectedMsg := "notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)"
	if err.Error() != expectedMsg {
		t.Errorf("error message = %q, want %q", err.Error(), expectedMsg)
	}
}
