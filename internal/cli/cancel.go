// Package cli provides the cancel command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCancelCmd creates the 'cancel' command.
func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Request cancellation of a running job",
		Long: `Ask the backend to cancel a job.

Cancellation is cooperative: the request returns immediately and the job
shows CANCELED only once the backend has confirmed it. Watch the job to
observe the final status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			apiClient, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			if err := apiClient.CancelJob(ctx, args[0]); err != nil {
				return fmt.Errorf("cancel failed: %w", err)
			}
			logger.Info().Str("job_id", args[0]).Msg("Cancel requested; the job stops once the backend confirms")
			return nil
		},
	}
}
