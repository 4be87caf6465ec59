// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sivacor/sivacor-cli/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sivacor configuration",
		Long: `Configuration management commands.

Commands:
  login - Store the platform URL and API key
  show  - Display current configuration
  test  - Test API connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigLoginCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns the active config file path, honoring --config.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultAPIConfigPath()
}

// newConfigLoginCmd creates the 'config login' command.
func newConfigLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the platform URL and API key",
		Long: `Prompt for the platform URL and API key and save them.

The key is read without echo and the config file is written with
owner-only permissions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadAPIConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			reader := bufio.NewReader(os.Stdin)

			prompt := "Platform URL"
			if cfg.PlatformURL != "" {
				prompt += " [" + cfg.PlatformURL + "]"
			}
			fmt.Print(prompt + ": ")
			urlInput, _ := reader.ReadString('\n')
			if urlInput = strings.TrimSpace(urlInput); urlInput != "" {
				cfg.PlatformURL = urlInput
			}

			fmt.Print("API key: ")
			keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			if key := strings.TrimSpace(string(keyBytes)); key != "" {
				cfg.APIKey = key
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveAPIConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Configuration saved to %s\n", path)
			return nil
		},
	}
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAPIConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Platform URL:      %s\n", orDash(cfg.PlatformURL))
			fmt.Printf("API key:           %s\n", maskKey(cfg.APIKey))
			fmt.Printf("Poll interval:     %ds\n", cfg.Monitor.PollIntervalSeconds)
			fmt.Printf("Log buffer size:   %d\n", cfg.Monitor.LogBufferEntries)
			return nil
		},
	}
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			user, err := apiClient.GetCurrentUser(ctx)
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}

			fmt.Printf("Connected to %s as %s\n", cfg.PlatformURL, user.Login)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
