// Package cli provides the watch command and the shared monitoring loop.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/api"
	"github.com/sivacor/sivacor-cli/internal/config"
	"github.com/sivacor/sivacor-cli/internal/logstream"
	"github.com/sivacor/sivacor-cli/internal/metrics"
	"github.com/sivacor/sivacor-cli/internal/models"
	"github.com/sivacor/sivacor-cli/internal/poller"
	"github.com/sivacor/sivacor-cli/internal/recovery"
)

// newWatchCmd creates the 'watch' command.
func newWatchCmd() *cobra.Command {
	var (
		submissionID   string
		submissionName string
		withLogs       bool
	)

	cmd := &cobra.Command{
		Use:   "watch [job-id]",
		Short: "Watch a job until it reaches a terminal status",
		Long: `Poll a job's status until it finishes and print the result summary.

With no job id the most recent submission is resumed; --submission or
--name select a specific one. When no prior submission exists there is
nothing to watch and the command exits cleanly.

Example:
  sivacor watch 65a1b2c3d4e5f6a7b8c9d0e1 --logs
  sivacor watch --name experiment-42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			var jobID string
			if len(args) == 1 {
				jobID = args[0]
			}

			return watchJob(GetContext(), apiClient, cfg, watchTarget{
				jobID:          jobID,
				submissionID:   submissionID,
				submissionName: submissionName,
				withLogs:       withLogs,
			})
		},
	}

	cmd.Flags().StringVar(&submissionID, "submission", "", "Submission id to resume")
	cmd.Flags().StringVar(&submissionName, "name", "", "Submission name to resume")
	cmd.Flags().BoolVar(&withLogs, "logs", false, "Stream live container logs while watching")

	return cmd
}

// watchTarget names the job to monitor: either an explicit job id, or a
// submission hint to resolve one from.
type watchTarget struct {
	jobID          string
	submissionID   string
	submissionName string
	withLogs       bool
}

// watchJob runs the monitoring loop for one job: optional submission
// recovery, status polling, live log streaming, and the terminal summary.
// Shared by watch and run.
func watchJob(ctx context.Context, apiClient *api.Client, cfg *config.APIConfig, target watchTarget) error {
	logger := GetLogger()

	var stream *logstream.Controller
	if target.withLogs {
		streamURL, err := apiClient.LogStreamURL()
		if err != nil {
			return fmt.Errorf("failed to build log stream URL: %w", err)
		}
		stream = logstream.NewController(streamURL, cfg.Monitor.LogBufferEntries, logger, func(entry logstream.LogEntry) {
			fmt.Printf("%s [%s] %s\n", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
		})
	}

	done := make(chan struct{})
	var fetchErr error
	lastStatus := models.JobStatus(-1)

	hooks := poller.Hooks{
		OnUpdate: func(job *models.JobRecord, _ *models.Submission) {
			if job.Status != lastStatus {
				lastStatus = job.Status
				fmt.Printf("Job %s: %s\n", job.ID, job.Status)
			}
		},
		OnTerminal: func(job *models.JobRecord, sub *models.Submission, stageMetrics []metrics.StageResult) {
			printTerminalSummary(job, sub, stageMetrics)
			close(done)
		},
		OnFetchError: func(msg string) {
			fetchErr = errors.New(msg)
			close(done)
		},
	}

	interval := time.Duration(cfg.Monitor.PollIntervalSeconds) * time.Second
	p := poller.New(apiClient, interval, logger, hooks)

	jobID := target.jobID
	var sub *models.Submission
	if jobID == "" {
		p.BeginResolve()
		sub = recovery.Resolve(ctx, apiClient, target.submissionID, target.submissionName, logger)
		if sub == nil || sub.Meta.JobID == "" {
			p.EndResolve()
			fmt.Println("No prior job to resume.")
			return nil
		}
		jobID = sub.Meta.JobID
		logger.Info().
			Str("submission", sub.Name).
			Str("job_id", jobID).
			Msg("Resuming monitoring")
	}

	if err := p.Watch(ctx, jobID, sub); err != nil {
		return err
	}
	if stream != nil && p.Active() {
		stream.Connect(ctx)
	}

	select {
	case <-done:
	case <-ctx.Done():
		p.Stop()
		if stream != nil {
			stream.Disconnect()
		}
		return ctx.Err()
	}

	if stream != nil {
		stream.Disconnect()
	}
	if fetchErr != nil {
		return fetchErr
	}
	if job := p.Job(); job != nil && job.Status == models.StatusError {
		return fmt.Errorf("job %s finished with status ERROR", job.ID)
	}
	return nil
}

// printTerminalSummary prints the final status, error message, per-stage
// metrics, and the artifact ids available for download.
func printTerminalSummary(job *models.JobRecord, sub *models.Submission, stageMetrics []metrics.StageResult) {
	fmt.Printf("\nJob %s finished: %s\n", job.ID, job.Status)
	if job.Status == models.StatusError && job.Error != "" {
		fmt.Printf("Error: %s\n", job.Error)
	}

	for _, sm := range stageMetrics {
		m := sm.Metrics
		fmt.Printf("\nStage %d (%s)\n", sm.Stage+1, m.OperatingSystem)
		fmt.Printf("  started:  %s\n", m.StartedAt)
		fmt.Printf("  finished: %s\n", m.FinishedAt)
		fmt.Printf("  max cpu:  %.1f%% of %d cores\n", m.MaxCPUPercent, m.NCPU)
		fmt.Printf("  max mem:  %s of %s\n", formatBytes(m.MaxMemoryUsage), formatBytes(m.MemTotal))
	}

	if sub != nil {
		var available []string
		for _, key := range models.ArtifactKeys() {
			if sub.ArtifactID(key) != "" {
				available = append(available, key)
			}
		}
		if len(available) > 0 {
			fmt.Printf("\nArtifacts (sivacor download <name> --submission %s):\n", sub.ID)
			for _, key := range available {
				fmt.Printf("  %s\n", key)
			}
		}
	}
}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
