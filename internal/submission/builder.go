// Package submission validates multi-stage job configurations and issues the
// job-creation request.
package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// Validation errors surfaced before any network call is made.
var (
	ErrNoFile       = errors.New("no uploaded file to submit")
	ErrNoStages     = errors.New("at least one stage is required")
	ErrLastStage    = errors.New("cannot remove the last remaining stage")
	ErrUnknownStage = errors.New("unknown stage id")
)

// Service is the slice of the API client the builder needs.
type Service interface {
	SubmitJob(ctx context.Context, fileID string, stages []models.WireStage) (string, error)
}

// Builder holds an ordered sequence of stage configurations and submits them
// as a single job once every stage is fully populated.
type Builder struct {
	stages []models.StageConfig
}

// NewBuilder creates a builder with a single default (empty) stage.
func NewBuilder() *Builder {
	return &Builder{
		stages: []models.StageConfig{{ID: uuid.NewString()}},
	}
}

// NewBuilderFromStages creates a builder from previously persisted stages.
// An empty list falls back to the single default stage.
func NewBuilderFromStages(stages []models.StageConfig) *Builder {
	if len(stages) == 0 {
		return NewBuilder()
	}
	b := &Builder{stages: make([]models.StageConfig, len(stages))}
	copy(b.stages, stages)
	for i := range b.stages {
		if b.stages[i].ID == "" {
			b.stages[i].ID = uuid.NewString()
		}
	}
	return b
}

// Stages returns a copy of the current stage list.
func (b *Builder) Stages() []models.StageConfig {
	out := make([]models.StageConfig, len(b.stages))
	copy(out, b.stages)
	return out
}

// AddStage appends a new empty stage and returns its id.
func (b *Builder) AddStage() string {
	stage := models.StageConfig{ID: uuid.NewString()}
	b.stages = append(b.stages, stage)
	return stage.ID
}

// RemoveStage deletes the stage with the given id. Removing the last
// remaining stage is rejected: a job always has at least one stage.
func (b *Builder) RemoveStage(id string) error {
	if len(b.stages) <= 1 {
		return ErrLastStage
	}
	for i, s := range b.stages {
		if s.ID == id {
			b.stages = append(b.stages[:i], b.stages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStage, id)
}

// UpdateStage replaces the configuration of an existing stage, keyed by id.
func (b *Builder) UpdateStage(stage models.StageConfig) error {
	for i, s := range b.stages {
		if s.ID == stage.ID {
			b.stages[i] = stage
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStage, stage.ID)
}

// ValidateStages checks that the stage list is non-empty and every stage is
// fully populated.
func (b *Builder) ValidateStages() error {
	if len(b.stages) == 0 {
		return ErrNoStages
	}
	for i, s := range b.stages {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks the submission preconditions locally: a file handle and a
// non-empty list of fully populated stages.
func (b *Builder) Validate(fileID string) error {
	if fileID == "" {
		return ErrNoFile
	}
	return b.ValidateStages()
}

// Submit validates, transforms the stages to their wire shape, and issues a
// single job-creation request. On failure no partial job is assumed to exist.
func (b *Builder) Submit(ctx context.Context, svc Service, fileID string) (string, error) {
	if err := b.Validate(fileID); err != nil {
		return "", err
	}

	wire := make([]models.WireStage, len(b.stages))
	for i, s := range b.stages {
		wire[i] = s.ToWire()
	}

	jobID, err := svc.SubmitJob(ctx, fileID, wire)
	if err != nil {
		return "", fmt.Errorf("failed to submit job: %w", err)
	}
	return jobID, nil
}
