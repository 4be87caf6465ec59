// Package cli provides the submit command.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/models"
	"github.com/sivacor/sivacor-cli/internal/submission"
)

// newSubmitCmd creates the 'submit' command.
func newSubmitCmd() *cobra.Command {
	var stageSpecs []string

	cmd := &cobra.Command{
		Use:   "submit <file-id>",
		Short: "Submit a multi-stage replication job for an uploaded bundle",
		Long: `Submit a job running the uploaded bundle through one or more stages.

Stages come from --stage flags (image:tag:entry, repeatable, in order) or,
when none are given, from the persisted stage list ('sivacor stages').
All stages are validated locally before anything is sent.

Example:
  sivacor submit 65a1b2c3d4e5f6a7b8c9d0e1 --stage python:3.12:main.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			builder, err := stageBuilderFromFlags(stageSpecs)
			if err != nil {
				return err
			}

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			jobID, err := builder.Submit(ctx, apiClient, args[0])
			if err != nil {
				return fmt.Errorf("submit failed: %w", err)
			}

			logger.Info().Str("job_id", jobID).Msg("Job submitted")
			fmt.Println(jobID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&stageSpecs, "stage", nil, "Stage as image:tag:entry (repeatable, ordered)")

	return cmd
}

// stageBuilderFromFlags builds the stage list from --stage specs, falling
// back to the persisted list when none are given.
func stageBuilderFromFlags(specs []string) (*submission.Builder, error) {
	if len(specs) == 0 {
		builder, _, err := loadStageBuilder()
		return builder, err
	}

	stages := make([]models.StageConfig, 0, len(specs))
	for _, spec := range specs {
		stage, err := parseStageSpec(spec)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return submission.NewBuilderFromStages(stages), nil
}

// parseStageSpec parses "image:tag:entry". The entry part may itself
// contain colons; only the first two separators split.
func parseStageSpec(spec string) (models.StageConfig, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return models.StageConfig{}, fmt.Errorf("invalid stage %q: expected image:tag:entry", spec)
	}
	return models.StageConfig{
		Image:     strings.TrimSpace(parts[0]),
		Tag:       strings.TrimSpace(parts[1]),
		EntryFile: strings.TrimSpace(parts[2]),
	}, nil
}
