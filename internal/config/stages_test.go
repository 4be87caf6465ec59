package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sivacor/sivacor-cli/internal/models"
)

func TestSaveAndLoadStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.json")

	stages := []models.StageConfig{
		{ID: "a", Image: "python", Tag: "3.12", EntryFile: "prep.py"},
		{ID: "b", Image: "r-base", Tag: "4.3", EntryFile: "analyze.R"},
	}
	if err := SaveStages(stages, path); err != nil {
		t.Fatalf("SaveStages failed: %v", err)
	}

	loaded, err := LoadStages(path)
	if err != nil {
		t.Fatalf("LoadStages failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len = %d, want 2", len(loaded))
	}
	for i := range stages {
		if loaded[i] != stages[i] {
			t.Errorf("stage %d = %+v, want %+v", i, loaded[i], stages[i])
		}
	}
}

func TestLoadStagesMissingFile(t *testing.T) {
	stages, err := LoadStages(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadStages failed: %v", err)
	}
	if stages != nil {
		t.Errorf("stages = %v, want nil", stages)
	}
}

func TestLoadStagesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	stages, err := LoadStages(path)
	if err != nil {
		t.Fatalf("LoadStages failed: %v", err)
	}
	if stages != nil {
		t.Errorf("stages = %v, want nil for corrupt file", stages)
	}
}

func TestSaveStagesOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.json")

	if err := SaveStages([]models.StageConfig{{ID: "a", Image: "python"}}, path); err != nil {
		t.Fatal(err)
	}
	if err := SaveStages([]models.StageConfig{{ID: "b", Image: "r-base"}}, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadStages(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].ID != "b" {
		t.Errorf("loaded = %+v, want single stage b", loaded)
	}
}
