// Package config provides configuration management for sivacor-cli.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// APIConfig holds the connection and monitoring settings for the SivaCoR
// platform.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\sivacor\apiconfig
//   - Unix: ~/.config/sivacor/apiconfig
//
// INI format:
//
//	[sivacor]
//	platform_url = https://replicate.example.org/api/v1
//	api_key = <bearer-token>
//
//	[sivacor.monitor]
//	poll_interval_seconds = 5
//	log_buffer_entries = 1000
type APIConfig struct {
	// PlatformURL is the SivaCoR REST base URL.
	PlatformURL string `ini:"platform_url"`

	// APIKey is the bearer token for REST and websocket authentication.
	APIKey string `ini:"api_key"`

	// Monitor holds job-monitoring settings.
	Monitor MonitorConfig
}

// MonitorConfig contains settings for the job status poller and log stream.
type MonitorConfig struct {
	// PollIntervalSeconds is the fixed status-poll period.
	// Minimum: 1, Maximum: 300, Default: 5
	PollIntervalSeconds int `ini:"poll_interval_seconds"`

	// LogBufferEntries is the live-log ring buffer capacity.
	// Default: 1000
	LogBufferEntries int `ini:"log_buffer_entries"`
}

// Validation errors
var (
	ErrMissingPlatformURL = errors.New("platform_url is required")
	ErrMissingAPIKey      = errors.New("api_key is required")
	ErrInvalidPollPeriod  = errors.New("poll_interval_seconds must be between 1 and 300")
	ErrInvalidLogBuffer   = errors.New("log_buffer_entries must be positive")
)

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		return filepath.Join(userProfile, ".config", "sivacor"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sivacor"), nil
}

// DefaultAPIConfigPath returns the default path for the apiconfig file.
func DefaultAPIConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "apiconfig"), nil
}

// NewAPIConfig creates an APIConfig with default values.
func NewAPIConfig() *APIConfig {
	return &APIConfig{
		Monitor: MonitorConfig{
			PollIntervalSeconds: 5,
			LogBufferEntries:    1000,
		},
	}
}

// LoadAPIConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
func LoadAPIConfig(path string) (*APIConfig, error) {
	cfg := NewAPIConfig()

	if path == "" {
		var err error
		path, err = DefaultAPIConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load apiconfig: %w", err)
	}

	section := iniFile.Section("sivacor")
	cfg.PlatformURL = section.Key("platform_url").String()
	cfg.APIKey = section.Key("api_key").String()

	monitorSection := iniFile.Section("sivacor.monitor")
	cfg.Monitor.PollIntervalSeconds = monitorSection.Key("poll_interval_seconds").MustInt(5)
	cfg.Monitor.LogBufferEntries = monitorSection.Key("log_buffer_entries").MustInt(1000)

	return cfg, nil
}

// SaveAPIConfig saves configuration to an INI file with restrictive
// permissions, using a temp file plus rename for atomicity.
func SaveAPIConfig(cfg *APIConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultAPIConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	section, err := iniFile.NewSection("sivacor")
	if err != nil {
		return fmt.Errorf("failed to create sivacor section: %w", err)
	}
	section.Key("platform_url").SetValue(cfg.PlatformURL)
	section.Key("api_key").SetValue(cfg.APIKey)

	monitorSection, err := iniFile.NewSection("sivacor.monitor")
	if err != nil {
		return fmt.Errorf("failed to create monitor section: %w", err)
	}
	monitorSection.Key("poll_interval_seconds").SetValue(fmt.Sprintf("%d", cfg.Monitor.PollIntervalSeconds))
	monitorSection.Key("log_buffer_entries").SetValue(fmt.Sprintf("%d", cfg.Monitor.LogBufferEntries))

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// The API key is sensitive.
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks connection and monitor settings.
func (cfg *APIConfig) Validate() error {
	if strings.TrimSpace(cfg.PlatformURL) == "" {
		return ErrMissingPlatformURL
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if cfg.Monitor.PollIntervalSeconds < 1 || cfg.Monitor.PollIntervalSeconds > 300 {
		return ErrInvalidPollPeriod
	}
	if cfg.Monitor.LogBufferEntries <= 0 {
		return ErrInvalidLogBuffer
	}
	return nil
}
