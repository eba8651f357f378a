package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/relaydeploy/relay/internal/templates"
)

func TestInitCmd_Structure(t *testing.T) {
	t.Parallel()

	cmd := initCmd

	if cmd.Use != "init" {
		t.Errorf("Expected command use 'init', got '%s'", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Expected command short description to be set")
	}
	if cmd.Long == "" {
		t.Error("Expected command long description to be set")
	}
	if cmd.Example == "" {
		t.Error("Expected command example to be set")
	}
}

func TestInitCmd_Flags(t *testing.T) {
	t.Parallel()

	forceFlag := initCmd.Flags().Lookup("force")
	if forceFlag == nil {
		t.Fatal("Expected 'force' flag to be defined")
	}
	if forceFlag.DefValue != "false" {
		t.Errorf("Expected 'force' flag default to be 'false', got '%s'", forceFlag.DefValue)
	}
}

func TestInitCmd_HelpOutput(t *testing.T) {
	var buf bytes.Buffer

	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"init", "--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Errorf("Expected no error executing help command, got: %v", err)
	}

	output := buf.String()
	expectedStrings := []string{
		"Init creates the configuration files",
		"config.yaml",
		".env",
		"--force",
	}

	for _, expected := range expectedStrings {
		if !containsString(output, expected) {
			t.Errorf("Expected help output to contain %q, got:\n%s", expected, output)
		}
	}
}

func withTempDir(t *testing.T) {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore original directory: %v", err)
		}
	})
}

func TestInitCmd_CreatesFiles(t *testing.T) {
	withTempDir(t)
	force = false

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	for _, file := range []string{"config.yaml", ".env"} {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			t.Errorf("Expected file %s to be created", file)
		}
	}
}

func TestInitCmd_ConfigYAMLContent(t *testing.T) {
	withTempDir(t)
	force = false

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	content, err := os.ReadFile("config.yaml")
	if err != nil {
		t.Fatalf("Failed to read config.yaml: %v", err)
	}
	if !bytes.Equal(content, templates.ConfigYAML) {
		t.Error("config.yaml content does not match embedded template")
	}
}

func TestInitCmd_EnvFileContent(t *testing.T) {
	withTempDir(t)
	force = false

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	content, err := os.ReadFile(".env")
	if err != nil {
		t.Fatalf("Failed to read .env: %v", err)
	}
	if !bytes.Equal(content, templates.EnvFile) {
		t.Error(".env content does not match embedded template")
	}
}

func TestInitCmd_SkipsExistingFiles(t *testing.T) {
	withTempDir(t)

	existingContent := []byte("# My custom config\ntest: true\n")
	if err := os.WriteFile("config.yaml", existingContent, 0600); err != nil {
		t.Fatalf("Failed to create existing config.yaml: %v", err)
	}

	force = false
	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	content, err := os.ReadFile("config.yaml")
	if err != nil {
		t.Fatalf("Failed to read config.yaml: %v", err)
	}
	if !bytes.Equal(content, existingContent) {
		t.Error("config.yaml should not be overwritten without --force flag")
	}
}

func TestInitCmd_ForceOverwritesFiles(t *testing.T) {
	withTempDir(t)

	existingContent := []byte("# My custom config\ntest: true\n")
	if err := os.WriteFile("config.yaml", existingContent, 0600); err != nil {
		t.Fatalf("Failed to create existing config.yaml: %v", err)
	}

	force = true
	defer func() { force = false }()

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	content, err := os.ReadFile("config.yaml")
	if err != nil {
		t.Fatalf("Failed to read config.yaml: %v", err)
	}
	if !bytes.Equal(content, templates.ConfigYAML) {
		t.Error("config.yaml should be overwritten with --force flag")
	}
}

func TestInitCmd_FilePermissions(t *testing.T) {
	if os.PathSeparator == '\\' {
		t.Skip("Skipping file permissions test on Windows")
	}

	withTempDir(t)
	force = false

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("initCmd.RunE() error = %v", err)
	}

	for _, file := range []string{"config.yaml", ".env"} {
		info, err := os.Stat(file)
		if err != nil {
			t.Errorf("Failed to stat %s: %v", file, err)
			continue
		}
		if mode := info.Mode().Perm(); mode&0077 != 0 {
			t.Errorf("%s has insecure permissions: %o, expected 0600", file, mode)
		}
	}
}

func TestInitCmd_IdempotentRun(t *testing.T) {
	withTempDir(t)
	force = false

	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("First initCmd.RunE() error = %v", err)
	}
	if err := initCmd.RunE(initCmd, []string{}); err != nil {
		t.Fatalf("Second initCmd.RunE() error = %v (should be idempotent)", err)
	}

	for _, file := range []string{"config.yaml", ".env"} {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			t.Errorf("Expected file %s to still exist after second run", file)
		}
	}
}
