package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/story-validator/internal/db"
	"github.com/marcus/story-validator/internal/types"
)

var storyCommand = &cobra.Command{
	Use:   "story [files...]",
	Short: "Load user stories into the database",
	Long: `Upserts user stories from JSON files. Each file holds one story:

  {
    "id": "ST-42",
    "title": "...",
    "description": "...",
    "acceptance_criteria": ["..."]
  }`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStoryCmd,
}

var storyConfigPath string

func init() {
	storyCommand.Flags().StringVar(&storyConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(storyCommand)
}

func runStoryCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(storyConfigPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL required (set DATABASE_URL or config)")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read story file %s: %w", path, err)
		}

		var story types.Story
		if err := json.Unmarshal(data, &story); err != nil {
			return fmt.Errorf("failed to parse story file %s: %w", path, err)
		}
		if story.ID == "" {
			return fmt.Errorf("story file %s has no id", path)
		}

		if err := database.UpsertStory(ctx, &story); err != nil {
			return err
		}
		fmt.Printf("Upserted story %s (%s)\n", story.ID, story.Title)
	}
	return nil
}
