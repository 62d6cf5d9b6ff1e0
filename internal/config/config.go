// Package config provides configuration loading and validation for the
// validator CLI and API server. Values come from an optional JSON file,
// the environment, and CLI flags, with flags winning.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds every knob the validator reads. All fields are
// optional in the file; missing values fall back to defaults or must
// arrive via flags.
type Config struct {
	// Connections
	APIKey      string `json:"api_key,omitempty" validate:"omitempty"`
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,uri"`

	// Retrieval
	TopK               int     `json:"top_k,omitempty" validate:"omitempty,min=1,max=100"`
	RelevanceThreshold float64 `json:"relevance_threshold,omitempty" validate:"omitempty,min=0,max=1"`

	// LLM resilience
	MaxAttempts int           `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`
	LLMTimeout  time.Duration `json:"-"`
	// LLMTimeoutSeconds is the JSON-facing form of LLMTimeout.
	LLMTimeoutSeconds int `json:"llm_timeout_seconds,omitempty" validate:"omitempty,min=1"`

	// Output
	ReportDir string `json:"report_dir,omitempty"`
	Port      int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Verbose   bool   `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration. Threshold 0.30 keeps
// weakly related CR chunks out of the context without starving short
// stories of material.
func Defaults() Config {
	return Config{
		TopK:               12,
		RelevanceThreshold: 0.30,
		MaxAttempts:        3,
		LLMTimeout:         120 * time.Second,
		ReportDir:          "reports",
		Port:               8080,
	}
}

// Load reads a JSON config file. An empty path returns an empty config
// so callers can rely on defaults and the environment alone.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.LLMTimeoutSeconds > 0 {
		cfg.LLMTimeout = time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	}

	return &cfg, nil
}

// FromEnv overlays environment variables onto empty fields. It does
// not override values the file already set.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.ReportDir == "" {
		c.ReportDir = os.Getenv("REPORT_DIR")
	}
	if c.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.Port = port
		}
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: field %s failed %s validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults fills empty fields from defaults. Bool fields are
// not merged since unset and false are indistinguishable; flags win
// for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ReportDir == "" {
		result.ReportDir = defaults.ReportDir
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.RelevanceThreshold == 0 {
		result.RelevanceThreshold = defaults.RelevanceThreshold
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}
