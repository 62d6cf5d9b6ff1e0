package types

import (
	"time"

	"github.com/google/uuid"
)

// CRSelection records one CR chosen for a validation run, pinned to the
// document version the run actually saw.
type CRSelection struct {
	DocID   string `json:"doc_id"`
	Version int    `json:"version"`
}

// ValidationResult aggregates everything one orchestrator invocation
// produced. It is never mutated after construction; corrections are a
// new result plus append-only comments and audit records.
type ValidationResult struct {
	ID              uuid.UUID         `json:"id"`
	StoryID         string            `json:"story_id"`
	CRSelections    []CRSelection     `json:"cr_selections"`
	Phases          PhaseResults      `json:"phases"`
	DimensionScores []DimensionScore  `json:"dimension_scores"`
	OverallScore    float64           `json:"overall_score"`
	RiskBand        RiskBand          `json:"risk_band"`
	ReportPath      string            `json:"report_path,omitempty"`
	PromptVersions  map[string]string `json:"prompt_versions"`
	Warnings        []string          `json:"warnings,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
