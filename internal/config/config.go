// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/relaydeploy/relay/internal/history"
	"github.com/relaydeploy/relay/internal/labels"
)

// Config represents the resolved runtime configuration the orchestrator,
// engine client, and CLI commands share.
type Config struct {
	CheckIntervalSeconds   int    `mapstructure:"check_interval_seconds"`
	EnableLabelKey         string `mapstructure:"enable_label_key"`
	CleanupOldImages       bool   `mapstructure:"cleanup_old_images"`
	EngineHost             string `mapstructure:"engine_host"`
	EngineTimeoutSeconds   int    `mapstructure:"engine_timeout_seconds"`
	CheckOnStartup         bool   `mapstructure:"check_on_startup"`
	EngineConfigPath       string `mapstructure:"engine_config_path"`
	RollingUpdateEnabled   bool   `mapstructure:"rolling_update_enabled"`
	HealthcheckTimeoutSec  int    `mapstructure:"healthcheck_timeout_sec"`
	HealthcheckIntervalSec int    `mapstructure:"healthcheck_interval_sec"`
	HistoryFilePath        string `mapstructure:"history_file"`
	HistoryMaxCycles       int    `mapstructure:"history_max_cycles"`

	Notification NotificationConfig `mapstructure:"notification"`

	// ConfigFilePath stores the path to the loaded config file (not
	// marshaled from YAML).
	ConfigFilePath string `mapstructure:"-"`
}

// NotificationConfig contains notification settings.
type NotificationConfig struct {
	ShoutrrrURL string `mapstructure:"shoutrrr_url"`
	Enabled     bool   `mapstructure:"enabled"`
}

// CheckInterval returns CheckIntervalSeconds as a time.Duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// EngineTimeout returns EngineTimeoutSeconds as a time.Duration.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.EngineTimeoutSeconds) * time.Second
}

// HealthcheckTimeout returns HealthcheckTimeoutSec as a time.Duration.
func (c *Config) HealthcheckTimeout() time.Duration {
	return time.Duration(c.HealthcheckTimeoutSec) * time.Second
}

// HealthcheckInterval returns HealthcheckIntervalSec as a time.Duration.
func (c *Config) HealthcheckInterval() time.Duration {
	return time.Duration(c.HealthcheckIntervalSec) * time.Second
}

// autoDetectEngineHost determines the container engine host based on
// environment and platform, the same detection order the Docker CLI
// itself uses.
func autoDetectEngineHost() string {
	if os.Getenv("DOCKER_HOST") != "" {
		return os.Getenv("DOCKER_HOST")
	}
	if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		return "unix:///var/run/docker.sock"
	}
	return "npipe:////./pipe/docker_engine"
}

// autoDetectEngineConfigPath locates the engine credential file the
// Docker CLI itself would use: $DOCKER_CONFIG/config.json if set, else
// $HOME/.docker/config.json. It returns "" when neither can be
// determined, leaving credential lookups to find nothing rather than
// erroring.
func autoDetectEngineConfigPath() string {
	if dir := os.Getenv("DOCKER_CONFIG"); dir != "" {
		return filepath.Join(dir, "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".docker", "config.json")
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/relay")
		v.AddConfigPath("/etc/relay")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, fmt.Errorf("error reading config file from %s: %w", configFile, err)
		}
		// Config file not found; using defaults and env vars.
	}

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("error unmarshaling config from %s: %w", configFile, err)
	}

	cfg.ConfigFilePath = v.ConfigFileUsed()

	if cfg.EngineHost == "" {
		cfg.EngineHost = autoDetectEngineHost()
	}

	if err := cfg.Validate(); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("config validation failed for %s: %w", configFile, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("check_interval_seconds", 300)
	v.SetDefault("enable_label_key", labels.DefaultEnableLabelKey)
	v.SetDefault("cleanup_old_images", false)

	if os.Getenv("DOCKER_HOST") != "" {
		v.SetDefault("engine_host", os.Getenv("DOCKER_HOST"))
	} else if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		v.SetDefault("engine_host", "unix:///var/run/docker.sock")
	} else {
		v.SetDefault("engine_host", "npipe:////./pipe/docker_engine")
	}

	v.SetDefault("engine_timeout_seconds", 60)
	v.SetDefault("check_on_startup", true)
	v.SetDefault("engine_config_path", autoDetectEngineConfigPath())
	v.SetDefault("rolling_update_enabled", true)
	v.SetDefault("healthcheck_timeout_sec", 60)
	v.SetDefault("healthcheck_interval_sec", 5)
	v.SetDefault("history_file", "history.json")
	v.SetDefault("history_max_cycles", history.DefaultMaxCycles)

	v.SetDefault("notification.shoutrrr_url", "")
	v.SetDefault("notification.enabled", false)
}

// Validate ensures all fields are within valid ranges.
func (c *Config) Validate() error {
	configSource := c.ConfigFilePath
	if configSource == "" {
		configSource = "(defaults/environment)"
	}

	if err := c.validateRanges(configSource); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRanges(configSource string) error {
	if c.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("check_interval_seconds must be > 0, got %d in config %s", c.CheckIntervalSeconds, configSource)
	}
	if c.EngineTimeoutSeconds <= 0 {
		return fmt.Errorf("engine_timeout_seconds must be > 0, got %d in config %s", c.EngineTimeoutSeconds, configSource)
	}
	if c.HealthcheckTimeoutSec <= 0 {
		return fmt.Errorf("healthcheck_timeout_sec must be > 0, got %d in config %s", c.HealthcheckTimeoutSec, configSource)
	}
	if c.HealthcheckIntervalSec <= 0 {
		return fmt.Errorf("healthcheck_interval_sec must be > 0, got %d in config %s", c.HealthcheckIntervalSec, configSource)
	}
	if c.HistoryMaxCycles <= 0 {
		return fmt.Errorf("history_max_cycles must be > 0, got %d in config %s", c.HistoryMaxCycles, configSource)
	}
	if c.EnableLabelKey == "" {
		return fmt.Errorf("enable_label_key must not be empty in config %s", configSource)
	}
	return nil
}
