// Package cli provides API client helper functions.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sivacor/sivacor-cli/internal/api"
	"github.com/sivacor/sivacor-cli/internal/config"
)

// loadAPIConfig reads the INI config and applies flag and environment
// overrides. Precedence for the key: --api-key, --token-file, SIVACOR_API_KEY,
// config file.
func loadAPIConfig() (*config.APIConfig, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultAPIConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg, err := config.LoadAPIConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if apiBaseURL != "" {
		cfg.PlatformURL = apiBaseURL
	}

	switch {
	case apiKey != "":
		cfg.APIKey = apiKey
	case tokenFile != "":
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(string(data))
	case os.Getenv("SIVACOR_API_KEY") != "":
		cfg.APIKey = os.Getenv("SIVACOR_API_KEY")
	}

	return cfg, nil
}

// getAPIClient loads configuration and creates an API client.
// This is the standard way to get an API client in CLI commands.
func getAPIClient() (*api.Client, *config.APIConfig, error) {
	cfg, err := loadAPIConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration (run 'sivacor config login'): %w", err)
	}

	client, err := api.NewClient(cfg.PlatformURL, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, cfg, nil
}
