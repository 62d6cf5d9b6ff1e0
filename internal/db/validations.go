package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marcus/story-validator/internal/types"
)

// Schema:
//
//	CREATE TABLE validations (
//	    id            UUID PRIMARY KEY,
//	    story_id      TEXT NOT NULL REFERENCES stories(id),
//	    status        TEXT NOT NULL DEFAULT 'completed',
//	    failed_stage  TEXT,
//	    result        JSONB,
//	    overall_score DOUBLE PRECISION,
//	    risk_band     TEXT,
//	    report_path   TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The full ValidationResult is stored as a JSONB document; score, band
// and report path are lifted into columns for listing and filtering.

// ValidationSummary is a lightweight view of a stored validation for
// listing.
type ValidationSummary struct {
	ID           uuid.UUID      `json:"id"`
	StoryID      string         `json:"story_id"`
	Status       string         `json:"status"`
	OverallScore float64        `json:"overall_score"`
	RiskBand     types.RiskBand `json:"risk_band"`
	CreatedAt    time.Time      `json:"created_at"`
}

// SaveValidation stores a completed validation result.
func (db *DB) SaveValidation(ctx context.Context, result *types.ValidationResult) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal validation result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO validations (id, story_id, status, result, overall_score, risk_band, report_path, created_at)
		 VALUES ($1, $2, 'completed', $3, $4, $5, $6, $7)`,
		result.ID, result.StoryID, doc, result.OverallScore, result.RiskBand, result.ReportPath, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save validation %s: %w", result.ID, err)
	}
	return nil
}

// GetValidation loads a stored validation result by ID.
func (db *DB) GetValidation(ctx context.Context, validationID uuid.UUID) (*types.ValidationResult, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx,
		`SELECT result FROM validations WHERE id = $1 AND result IS NOT NULL`,
		validationID,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ValidationNotFoundError{ValidationID: validationID}
		}
		return nil, fmt.Errorf("failed to get validation %s: %w", validationID, err)
	}

	var result types.ValidationResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation %s: %w", validationID, err)
	}
	return &result, nil
}

// MarkFailed records a validation run that did not complete, with the
// stage it failed in.
func (db *DB) MarkFailed(ctx context.Context, validationID uuid.UUID, storyID, stage string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO validations (id, story_id, status, failed_stage)
		 VALUES ($1, $2, 'failed', $3)
		 ON CONFLICT (id) DO UPDATE SET status = 'failed', failed_stage = $3`,
		validationID, storyID, stage,
	)
	if err != nil {
		return fmt.Errorf("failed to mark validation %s failed: %w", validationID, err)
	}
	return nil
}

// ListValidations retrieves recent validations for a story, newest
// first.
func (db *DB) ListValidations(ctx context.Context, storyID string, limit int) ([]ValidationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, story_id, status, COALESCE(overall_score, 0), COALESCE(risk_band, ''), created_at
		 FROM validations WHERE story_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		storyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	defer rows.Close()

	var summaries []ValidationSummary
	for rows.Next() {
		var s ValidationSummary
		if err := rows.Scan(&s.ID, &s.StoryID, &s.Status, &s.OverallScore, &s.RiskBand, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
