package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marcus/story-validator/internal/config"
	"github.com/marcus/story-validator/internal/db"
	"github.com/marcus/story-validator/internal/embedding"
	"github.com/marcus/story-validator/internal/llm"
	"github.com/marcus/story-validator/internal/observability"
	"github.com/marcus/story-validator/internal/phases"
	"github.com/marcus/story-validator/internal/pipeline"
	"github.com/marcus/story-validator/internal/report"
	"github.com/marcus/story-validator/internal/retrieval"
	"github.com/marcus/story-validator/internal/scoring"
	"github.com/marcus/story-validator/internal/vectorstore"
)

// app holds every wired collaborator plus the handles that need
// closing on shutdown.
type app struct {
	cfg      config.Config
	database *db.DB
	store    *vectorstore.PostgresStore
	embedder *embedding.GeminiEmbedder
	llm      llm.Client
	pipeline *pipeline.Pipeline
}

// loadConfig merges file, environment and defaults, in that order of
// precedence.
func loadConfig(configPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.FromEnv()
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// buildApp connects Postgres and Gemini and assembles the pipeline.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key required (set GEMINI_API_KEY or --api-key)")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required (set DATABASE_URL or --db-url)")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, embedding.DefaultModel)
	if err != nil {
		database.Close()
		return nil, err
	}

	baseClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		_ = embedder.Close()
		return nil, err
	}
	client := llm.NewResilientClient(baseClient, llm.RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: llm.DefaultRetryPolicy().InitialDelay,
		CallTimeout:  cfg.LLMTimeout,
	})

	store := vectorstore.NewPostgresStore(database.Pool())

	a := &app{
		cfg:      cfg,
		database: database,
		store:    store,
		embedder: embedder,
		llm:      client,
		pipeline: &pipeline.Pipeline{
			Stories:   database,
			Embedder:  embedder,
			Retriever: retrieval.New(store, cfg.TopK, cfg.RelevanceThreshold),
			Phases:    phases.NewRunner(client),
			Scoring:   scoring.NewEngine(),
			Reports:   report.NewFSSink(cfg.ReportDir),
			Results:   database,
			Audit:     database,
			Printer:   observability.NewPrinter(os.Stdout),
			Resilience: pipeline.ResiliencePolicy{
				MaxAttempts: cfg.MaxAttempts,
			},
		},
	}
	return a, nil
}

func (a *app) Close() {
	_ = a.llm.Close()
	_ = a.embedder.Close()
	a.database.Close()
}
