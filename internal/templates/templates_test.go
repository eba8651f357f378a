package templates

import (
	"strings"
	"testing"
)

func TestConfigYAML_NotEmpty(t *testing.T) {
	if len(ConfigYAML) == 0 {
		t.Error("Expected ConfigYAML to be non-empty")
	}
}

func TestConfigYAML_ContainsExpectedFields(t *testing.T) {
	content := string(ConfigYAML)

	expectedFields := []string{
		"check_interval_seconds:",
		"enable_label_key:",
		"cleanup_old_images:",
		"check_on_startup:",
		"engine_host:",
		"engine_timeout_seconds:",
		"rolling_update_enabled:",
		"healthcheck_timeout_sec:",
		"healthcheck_interval_sec:",
		"history_file:",
		"history_max_cycles:",
		"notification:",
		"shoutrrr_url:",
	}

	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Expected ConfigYAML to contain field %q", field)
		}
	}
}

func TestConfigYAML_ContainsComments(t *testing.T) {
	content := string(ConfigYAML)

	if !strings.Contains(content, "#") {
		t.Error("Expected ConfigYAML to contain comments (lines starting with #)")
	}
}

func TestConfigYAML_ValidYAMLStructure(t *testing.T) {
	content := string(ConfigYAML)

	lines := strings.Split(content, "\n")
	hasIndentation := false

	for _, line := range lines {
		if strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "   ") {
			hasIndentation = true
			break
		}
	}

	if !hasIndentation {
		t.Error("Expected ConfigYAML to have proper YAML indentation (2 spaces)")
	}
}

func TestEnvFile_NotEmpty(t *testing.T) {
	if len(EnvFile) == 0 {
		t.Error("Expected EnvFile to be non-empty")
	}
}

func TestEnvFile_ContainsEnvVars(t *testing.T) {
	content := string(EnvFile)

	expectedVars := []string{
		"RELAY_CHECK_INTERVAL_SECONDS",
		"RELAY_ENABLE_LABEL_KEY",
		"RELAY_ENGINE_HOST",
		"RELAY_ROLLING_UPDATE_ENABLED",
		"RELAY_NOTIFICATION_SHOUTRRR_URL",
	}

	for _, envVar := range expectedVars {
		if !strings.Contains(content, envVar) {
			t.Errorf("Expected EnvFile to contain variable %q", envVar)
		}
	}
}

func TestEnvFile_HasProperFormat(t *testing.T) {
	content := string(EnvFile)

	if !strings.Contains(content, "=") {
		t.Error("Expected EnvFile to contain '=' for key=value format")
	}
}

func TestConfigYAML_IsByteSlice(_ *testing.T) {
	_ = ConfigYAML[0]
}

func TestEnvFile_IsByteSlice(_ *testing.T) {
	_ = EnvFile[0]
}
