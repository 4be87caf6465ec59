// Package cli provides the download command.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/api"
	"github.com/sivacor/sivacor-cli/internal/download"
	"github.com/sivacor/sivacor-cli/internal/models"
)

// newDownloadCmd creates the 'download' command.
func newDownloadCmd() *cobra.Command {
	var (
		submissionID   string
		submissionName string
		destDir        string
	)

	cmd := &cobra.Command{
		Use:   "download <artifact>|all",
		Short: "Download a submission's result artifacts",
		Long: `Download a result artifact by its well-known name, or all of them.

Artifacts: ` + strings.Join(models.ArtifactKeys(), ", ") + `.

The submission defaults to the most recent one; --submission or --name
select a specific one. Filenames come from the server.

Example:
  sivacor download replicated_package --name experiment-42
  sivacor download all --dest results/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			sub, err := resolveSubmission(ctx, apiClient, submissionID, submissionName)
			if err != nil {
				return err
			}

			keys := []string{args[0]}
			if args[0] == "all" {
				keys = models.ArtifactKeys()
			}

			dl := download.New(apiClient, logger)
			var fetched int
			for _, key := range keys {
				fileID := sub.ArtifactID(key)
				if fileID == "" {
					if args[0] != "all" {
						return fmt.Errorf("submission %s has no %q artifact", sub.Name, key)
					}
					continue
				}
				path, err := dl.Fetch(ctx, fileID, destDir)
				if err != nil {
					return err
				}
				fmt.Println(path)
				fetched++
			}

			if fetched == 0 {
				return fmt.Errorf("submission %s has no artifacts yet", sub.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&submissionID, "submission", "", "Submission id")
	cmd.Flags().StringVar(&submissionName, "name", "", "Submission name")
	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory (default: current)")

	return cmd
}

// resolveSubmission fetches the requested submission: by id, by name, or
// the most recent one. Unlike startup recovery, a miss here is an error.
func resolveSubmission(ctx context.Context, apiClient *api.Client, id, name string) (*models.Submission, error) {
	switch {
	case id != "":
		return apiClient.GetSubmission(ctx, id)
	case name != "":
		return apiClient.FindSubmissionByName(ctx, name)
	default:
		return apiClient.LatestSubmission(ctx)
	}
}
