package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSaveAndLoadAPIConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiconfig")

	cfg := NewAPIConfig()
	cfg.PlatformURL = "https://replicate.example.org/api/v1"
	cfg.APIKey = "secret-token"
	cfg.Monitor.PollIntervalSeconds = 10
	cfg.Monitor.LogBufferEntries = 500

	if err := SaveAPIConfig(cfg, path); err != nil {
		t.Fatalf("SaveAPIConfig failed: %v", err)
	}

	loaded, err := LoadAPIConfig(path)
	if err != nil {
		t.Fatalf("LoadAPIConfig failed: %v", err)
	}

	if loaded.PlatformURL != cfg.PlatformURL {
		t.Errorf("PlatformURL = %q, want %q", loaded.PlatformURL, cfg.PlatformURL)
	}
	if loaded.APIKey != cfg.APIKey {
		t.Errorf("APIKey = %q, want %q", loaded.APIKey, cfg.APIKey)
	}
	if loaded.Monitor.PollIntervalSeconds != 10 {
		t.Errorf("PollIntervalSeconds = %d, want 10", loaded.Monitor.PollIntervalSeconds)
	}
	if loaded.Monitor.LogBufferEntries != 500 {
		t.Errorf("LogBufferEntries = %d, want 500", loaded.Monitor.LogBufferEntries)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config permissions = %o, want 600", perm)
		}
	}
}

func TestLoadAPIConfigMissingFile(t *testing.T) {
	cfg, err := LoadAPIConfig(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadAPIConfig failed: %v", err)
	}
	if cfg.Monitor.PollIntervalSeconds != 5 {
		t.Errorf("default poll interval = %d, want 5", cfg.Monitor.PollIntervalSeconds)
	}
	if cfg.Monitor.LogBufferEntries != 1000 {
		t.Errorf("default log buffer = %d, want 1000", cfg.Monitor.LogBufferEntries)
	}
}

func TestAPIConfigValidate(t *testing.T) {
	valid := func() *APIConfig {
		cfg := NewAPIConfig()
		cfg.PlatformURL = "https://replicate.example.org/api/v1"
		cfg.APIKey = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*APIConfig)
		wantErr error
	}{
		{"valid", func(cfg *APIConfig) {}, nil},
		{"missing url", func(cfg *APIConfig) { cfg.PlatformURL = " " }, ErrMissingPlatformURL},
		{"missing key", func(cfg *APIConfig) { cfg.APIKey = "" }, ErrMissingAPIKey},
		{"poll too small", func(cfg *APIConfig) { cfg.Monitor.PollIntervalSeconds = 0 }, ErrInvalidPollPeriod},
		{"poll too large", func(cfg *APIConfig) { cfg.Monitor.PollIntervalSeconds = 301 }, ErrInvalidPollPeriod},
		{"bad log buffer", func(cfg *APIConfig) { cfg.Monitor.LogBufferEntries = 0 }, ErrInvalidLogBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
