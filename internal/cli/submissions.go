// Package cli provides submission inspection commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// newSubmissionsCmd creates the 'submissions' command group.
func newSubmissionsCmd() *cobra.Command {
	subsCmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect past submissions (list, show)",
	}

	subsCmd.AddCommand(newSubmissionsListCmd())
	subsCmd.AddCommand(newSubmissionsShowCmd())

	return subsCmd
}

func newSubmissionsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			subs, err := apiClient.ListSubmissions(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list submissions: %w", err)
			}
			if len(subs) == 0 {
				fmt.Println("No submissions yet.")
				return nil
			}

			for _, sub := range subs {
				fmt.Printf("%-26s %-24s %s\n", sub.ID, sub.CreatedAt, sub.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of submissions to list")

	return cmd
}

func newSubmissionsShowCmd() *cobra.Command {
	var submissionName string

	cmd := &cobra.Command{
		Use:   "show [submission-id]",
		Short: "Show a submission's job status and artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			sub, err := resolveSubmission(ctx, apiClient, id, submissionName)
			if err != nil {
				return fmt.Errorf("failed to resolve submission: %w", err)
			}

			fmt.Printf("Submission: %s (%s)\n", sub.Name, sub.ID)
			fmt.Printf("Created:    %s\n", sub.CreatedAt)

			if sub.Meta.JobID != "" {
				if job, err := apiClient.GetJob(ctx, sub.Meta.JobID); err == nil {
					fmt.Printf("Job:        %s (%s)\n", job.ID, job.Status)
					if job.Status == models.StatusError && job.Error != "" {
						fmt.Printf("Error:      %s\n", job.Error)
					}
				} else {
					fmt.Printf("Job:        %s (status unavailable)\n", sub.Meta.JobID)
				}
			}

			fmt.Println("Artifacts:")
			for _, key := range models.ArtifactKeys() {
				if fileID := sub.ArtifactID(key); fileID != "" {
					fmt.Printf("  %-20s %s\n", key, fileID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&submissionName, "name", "", "Submission name")

	return cmd
}
