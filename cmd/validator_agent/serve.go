package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marcus/story-validator/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP API server",
	Long: `Starts the REST API exposing validation runs, stored results, reports
and reviewer comments. Streaming progress is available over SSE at
POST /validate/stream.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (defaults to PORT env var or 8080)")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		ReportDir: cfg.ReportDir,
	}, a.pipeline, a.database)

	return srv.Start()
}
