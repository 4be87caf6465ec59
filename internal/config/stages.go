package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// stagesFileName is the fixed key under which the stage form configuration
// persists between invocations, mirroring the dashboard's durable local
// storage. Stored as a JSON array of stage configs.
const stagesFileName = "stages.json"

// DefaultStagesPath returns the path of the persisted stage configuration.
func DefaultStagesPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stagesFileName), nil
}

// LoadStages restores the persisted stage configuration. A missing or
// unreadable file yields an empty list and no error: stale form state is
// never worth failing a run over.
func LoadStages(path string) ([]models.StageConfig, error) {
	if path == "" {
		var err error
		path, err = DefaultStagesPath()
		if err != nil {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, nil
	}

	var stages []models.StageConfig
	if err := json.Unmarshal(data, &stages); err != nil {
		// Corrupt form state is discarded, not surfaced.
		return nil, nil
	}
	return stages, nil
}

// SaveStages persists the stage configuration, overwriting any previous
// value (last writer wins; single-user by assumption).
func SaveStages(stages []models.StageConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultStagesPath()
		if err != nil {
			return fmt.Errorf("failed to determine stages path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(stages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stages: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write stages: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save stages: %w", err)
	}
	return nil
}
