// Package cli provides stage configuration commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivacor/sivacor-cli/internal/config"
	"github.com/sivacor/sivacor-cli/internal/models"
	"github.com/sivacor/sivacor-cli/internal/submission"
)

// newStagesCmd creates the 'stages' command group. Stage definitions
// persist under the config directory and survive restarts; submit and run
// use them when no --stage flags are given.
func newStagesCmd() *cobra.Command {
	stagesCmd := &cobra.Command{
		Use:   "stages",
		Short: "Manage the persisted stage list (list, add, remove, set, clear)",
		Long: `Commands for managing the locally persisted stage definitions.

Each stage names a container image, an image tag, and the entry file to
run inside the uploaded bundle. The list is stored on disk and reloaded
on the next start.`,
	}

	stagesCmd.AddCommand(newStagesListCmd())
	stagesCmd.AddCommand(newStagesAddCmd())
	stagesCmd.AddCommand(newStagesRemoveCmd())
	stagesCmd.AddCommand(newStagesSetCmd())
	stagesCmd.AddCommand(newStagesClearCmd())

	return stagesCmd
}

// loadStageBuilder restores the persisted stage list into a builder.
func loadStageBuilder() (*submission.Builder, string, error) {
	path, err := config.DefaultStagesPath()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve stages path: %w", err)
	}
	stages, err := config.LoadStages(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load stages: %w", err)
	}
	return submission.NewBuilderFromStages(stages), path, nil
}

func printStages(stages []models.StageConfig) {
	for i, st := range stages {
		fmt.Printf("%d. [%s]\n", i+1, st.ID)
		fmt.Printf("   image: %s:%s\n", orDash(st.Image), orDash(st.Tag))
		fmt.Printf("   entry: %s\n", orDash(st.EntryFile))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newStagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the persisted stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, _, err := loadStageBuilder()
			if err != nil {
				return err
			}
			printStages(builder.Stages())
			return nil
		},
	}
}

func newStagesAddCmd() *cobra.Command {
	var image, tag, entry string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a new stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, path, err := loadStageBuilder()
			if err != nil {
				return err
			}

			id := builder.AddStage()
			if image != "" || tag != "" || entry != "" {
				if err := builder.UpdateStage(models.StageConfig{
					ID: id, Image: image, Tag: tag, EntryFile: entry,
				}); err != nil {
					return err
				}
			}

			if err := config.SaveStages(builder.Stages(), path); err != nil {
				return fmt.Errorf("failed to save stages: %w", err)
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "Container image name")
	cmd.Flags().StringVar(&tag, "tag", "", "Container image tag")
	cmd.Flags().StringVar(&entry, "entry", "", "Entry file path inside the bundle")

	return cmd
}

func newStagesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <stage-id>",
		Short: "Remove a stage (the last remaining stage cannot be removed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, path, err := loadStageBuilder()
			if err != nil {
				return err
			}
			if err := builder.RemoveStage(args[0]); err != nil {
				return err
			}
			if err := config.SaveStages(builder.Stages(), path); err != nil {
				return fmt.Errorf("failed to save stages: %w", err)
			}
			return nil
		},
	}
}

func newStagesSetCmd() *cobra.Command {
	var image, tag, entry string

	cmd := &cobra.Command{
		Use:   "set <stage-id>",
		Short: "Update a stage's image, tag, or entry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, path, err := loadStageBuilder()
			if err != nil {
				return err
			}

			var current *models.StageConfig
			for _, st := range builder.Stages() {
				if st.ID == args[0] {
					st := st
					current = &st
					break
				}
			}
			if current == nil {
				return fmt.Errorf("unknown stage %q", args[0])
			}

			if cmd.Flags().Changed("image") {
				current.Image = image
			}
			if cmd.Flags().Changed("tag") {
				current.Tag = tag
			}
			if cmd.Flags().Changed("entry") {
				current.EntryFile = entry
			}
			if err := builder.UpdateStage(*current); err != nil {
				return err
			}

			if err := config.SaveStages(builder.Stages(), path); err != nil {
				return fmt.Errorf("failed to save stages: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "Container image name")
	cmd.Flags().StringVar(&tag, "tag", "", "Container image tag")
	cmd.Flags().StringVar(&entry, "entry", "", "Entry file path inside the bundle")

	return cmd
}

func newStagesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the stage list to a single empty stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultStagesPath()
			if err != nil {
				return fmt.Errorf("failed to resolve stages path: %w", err)
			}
			builder := submission.NewBuilder()
			if err := config.SaveStages(builder.Stages(), path); err != nil {
				return fmt.Errorf("failed to save stages: %w", err)
			}
			return nil
		},
	}
}
