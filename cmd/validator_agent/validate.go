package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/story-validator/internal/pipeline"
)

var validateCommand = &cobra.Command{
	Use:   "validate",
	Short: "Validate one story against selected CR documents",
	Long: `Runs the full validation pipeline for a story: embeds it, retrieves and
expands CR context, executes the analysis phases, computes the weighted
readiness score, and writes the HTML report.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runValidateCmd,
}

var (
	validateConfigPath  string
	validateStoryID     string
	validateCRDocIDs    []string
	validateAPIKey      string
	validateDatabaseURL string
	validateReportDir   string
	validateJSONOut     bool
	validateVerbose     bool
)

func init() {
	validateCommand.Flags().StringVar(&validateConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	validateCommand.Flags().StringVarP(&validateStoryID, "story", "s", "", "Story ID to validate (required)")
	validateCommand.Flags().StringSliceVar(&validateCRDocIDs, "cr", nil, "CR document IDs to validate against (repeatable; empty means all indexed documents)")
	validateCommand.Flags().StringVar(&validateAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	validateCommand.Flags().StringVar(&validateDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	validateCommand.Flags().StringVar(&validateReportDir, "report-dir", "", "Directory for HTML reports")
	validateCommand.Flags().BoolVar(&validateJSONOut, "json", false, "Print the full validation result as JSON")
	validateCommand.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = validateCommand.MarkFlagRequired("story")

	rootCmd.AddCommand(validateCommand)
}

func runValidateCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(validateConfigPath)
	if err != nil {
		return err
	}
	if validateAPIKey != "" {
		cfg.APIKey = validateAPIKey
	}
	if validateDatabaseURL != "" {
		cfg.DatabaseURL = validateDatabaseURL
	}
	if validateReportDir != "" {
		cfg.ReportDir = validateReportDir
	}
	if validateVerbose {
		cfg.Verbose = true
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx, pipeline.Options{
		StoryID:  validateStoryID,
		CRDocIDs: validateCRDocIDs,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if validateJSONOut {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}

	fmt.Printf("\nValidation %s complete\n", result.ID)
	fmt.Printf("  Story:      %s\n", result.StoryID)
	fmt.Printf("  Readiness:  %.2f/100\n", result.OverallScore)
	fmt.Printf("  Risk band:  %s\n", result.RiskBand)
	if result.ReportPath != "" {
		fmt.Printf("  Report:     %s\n", result.ReportPath)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "  Warning: %s\n", warning)
	}
	return nil
}
