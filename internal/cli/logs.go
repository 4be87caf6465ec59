// Package cli provides the logs command.
package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/logstream"
)

// newLogsCmd creates the 'logs' command.
func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Stream live container logs",
		Long: `Connect to the platform's live container log channel and print each
line as it arrives. Press Ctrl+C to disconnect. The stream does not
reconnect on its own; rerun the command to reconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			streamURL, err := apiClient.LogStreamURL()
			if err != nil {
				return fmt.Errorf("failed to build log stream URL: %w", err)
			}

			stream := logstream.NewController(streamURL, cfg.Monitor.LogBufferEntries, GetLogger(), func(entry logstream.LogEntry) {
				fmt.Printf("%s [%s] %s\n", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
			})
			stream.Connect(ctx)
			defer stream.Disconnect()

			// Block until Ctrl+C or the stream drops.
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if stream.State() == logstream.StateDisconnected {
						if msg := stream.StreamError(); msg != "" {
							return errors.New(msg)
						}
						return nil
					}
				}
			}
		},
	}
}
