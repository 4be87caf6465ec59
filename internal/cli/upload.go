// Package cli provides the upload command.
package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/upload"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a replication bundle in chunks",
		Long: `Upload a local file to the platform in fixed-size chunks.

The file is sent in sequential 5 MiB chunks. On any chunk failure the
upload aborts and must be restarted from the beginning.

Example:
  sivacor upload bundle.zip --folder 65a1b2c3d4e5f6a7b8c9d0e1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			apiClient, _, err := getAPIClient()
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
			fmt.Println(fileID)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderID, "folder", "", "Destination folder id")
	cmd.MarkFlagRequired("folder")

	return cmd
}

// newPercentBar creates a 0-100 progress bar on stderr so stdout stays
// reserved for ids and records.
func newPercentBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}
