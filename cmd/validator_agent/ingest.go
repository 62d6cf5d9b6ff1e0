package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/story-validator/internal/ingestion"
)

var ingestCommand = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Parse and index CR documents into the vector store",
	Long: `Parses HTML exports of CR, tech-doc, NFR, defect or release-note
documents, chunks them by section, embeds each chunk and indexes it.
Re-ingesting a document ID replaces its previous version entirely.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngestCmd,
}

var ingestConfigPath string

func init() {
	ingestCommand.Flags().StringVar(&ingestConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(ingestCommand)
}

func runIngestCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(ingestConfigPath)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ingestor := ingestion.NewIngestor(a.embedder, a.store)
	for _, path := range args {
		doc, count, err := ingestor.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %s v%d: %d chunks (%s)\n", doc.DocID, doc.Version, count, path)
	}
	return nil
}
