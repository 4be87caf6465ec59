// Package cli provides the run command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/upload"
)

// newRunCmd creates the 'run' command: upload, submit, watch in one go.
func newRunCmd() *cobra.Command {
	var (
		folderID   string
		stageSpecs []string
		withLogs   bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Upload a bundle, submit a job, and watch it to completion",
		Long: `The full replication workflow in one command.

The bundle is uploaded in chunks, a job is submitted with the configured
stages, and the job is watched until it reaches a terminal status.

Example:
  sivacor run bundle.zip --folder 65a1b2c3d4e5f6a7b8c9d0e1 --stage python:3.12:main.py --logs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			// Validate stages before any network traffic.
			builder, err := stageBuilderFromFlags(stageSpecs)
			if err != nil {
				return err
			}
			if err := builder.ValidateStages(); err != nil {
				return err
			}

			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			uploader := upload.New(apiClient)
			bar := newPercentBar("uploading")
			uploader.SetProgress(func(percent int, status string) {
				bar.Describe(status)
				_ = bar.Set(percent)
			})

			fileID, err := uploader.UploadFile(ctx, args[0], folderID)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
			logger.Info().Str("file_id", fileID).Msg("Upload complete")

			jobID, err := builder.Submit(ctx, apiClient, fileID)
			if err != nil {
				return fmt.Errorf("submit failed: %w", err)
			}
			logger.Info().Str("job_id", jobID).Msg("Job submitted")

			return watchJob(ctx, apiClient, cfg, watchTarget{jobID: jobID, withLogs: withLogs})
		},
	}

	cmd.Flags().StringVar(&folderID, "folder", "", "Destination folder id for the bundle")
	cmd.Flags().StringArrayVar(&stageSpecs, "stage", nil, "Stage as image:tag:entry (repeatable, ordered)")
	cmd.Flags().BoolVar(&withLogs, "logs", false, "Stream live container logs while watching")
	cmd.MarkFlagRequired("folder")

	return cmd
}
