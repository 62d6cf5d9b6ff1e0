// Package scoring computes the weighted readiness score and risk band
// from the per-dimension scores the readiness phase produced. All
// arithmetic here is deterministic; no model output can change the
// weights or the band thresholds.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/marcus/story-validator/internal/types"
)

// Risk band thresholds on the overall 0-100 score.
const (
	lowBandFloor    = 80.0
	mediumBandFloor = 60.0
)

// Engine computes weighted readiness scores.
type Engine struct {
	weights map[types.Dimension]float64
}

// NewEngine creates a scoring engine with the fixed default weights.
func NewEngine() *Engine {
	engine, err := NewEngineWithWeights(DefaultWeights())
	if err != nil {
		// defaultWeights is a compile-time constant set; this is
		// unreachable unless the table itself is edited wrongly.
		panic(err)
	}
	return engine
}

// NewEngineWithWeights creates an engine with explicit weights. The
// weights must cover every dimension and sum to 1.0.
func NewEngineWithWeights(weights map[types.Dimension]float64) (*Engine, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	return &Engine{weights: weights}, nil
}

// CalculateReadinessScore turns per-dimension scores into the weighted
// overall score with a full breakdown. Every dimension must appear
// exactly once and lie in [0,100]. Ambiguity and risk are inverted
// before weighting: a raw score of 100 on an inverted dimension
// contributes 0.
func (e *Engine) CalculateReadinessScore(scores []types.DimensionScore) (*types.ReadinessScore, error) {
	byDim := make(map[types.Dimension]types.DimensionScore, len(scores))
	var duplicates []types.Dimension
	for _, ds := range scores {
		if _, seen := byDim[ds.Dimension]; seen {
			duplicates = append(duplicates, ds.Dimension)
			continue
		}
		byDim[ds.Dimension] = ds
	}

	var missing []types.Dimension
	for _, dim := range types.Dimensions() {
		if _, ok := byDim[dim]; !ok {
			missing = append(missing, dim)
		}
	}
	if len(missing) > 0 || len(duplicates) > 0 {
		return nil, &IncompleteScoreSetError{Missing: missing, Duplicate: duplicates}
	}

	overall := 0.0
	breakdown := make([]types.WeightedScore, 0, len(byDim))
	for _, dim := range types.Dimensions() {
		ds := byDim[dim]
		if ds.Score < 0 || ds.Score > 100 {
			return nil, &ScoreRangeError{Dimension: dim, Score: ds.Score}
		}
		effective := ds.Score
		if dim.Inverted() {
			effective = 100 - ds.Score
		}
		weight := e.weights[dim]
		weighted := effective * weight
		overall += weighted
		breakdown = append(breakdown, types.WeightedScore{
			Dimension: dim,
			Raw:       ds.Score,
			Effective: effective,
			Weight:    weight,
			Weighted:  weighted,
		})
	}
	overall = math.Round(overall*100) / 100

	return &types.ReadinessScore{
		Overall:   overall,
		Breakdown: breakdown,
		Rationale: buildRationale(overall, breakdown),
	}, nil
}

// ClassifyRisk maps an overall readiness score to its risk band.
// Boundaries are inclusive on the lower edge: 80 is LOW, 60 is MEDIUM.
func ClassifyRisk(overall float64) types.RiskBand {
	switch {
	case overall >= lowBandFloor:
		return types.RiskBandLow
	case overall >= mediumBandFloor:
		return types.RiskBandMedium
	default:
		return types.RiskBandHigh
	}
}

// buildRationale renders a one-line explanation of how the overall
// score decomposes, strongest contributor first in canonical order.
func buildRationale(overall float64, breakdown []types.WeightedScore) string {
	parts := make([]string, 0, len(breakdown))
	for _, ws := range breakdown {
		if ws.Dimension.Inverted() {
			parts = append(parts, fmt.Sprintf("%s %.0f (inverted to %.0f, weight %.2f)",
				ws.Dimension, ws.Raw, ws.Effective, ws.Weight))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.0f (weight %.2f)", ws.Dimension, ws.Raw, ws.Weight))
	}
	return fmt.Sprintf("overall %.2f (%s band): %s",
		overall, ClassifyRisk(overall), strings.Join(parts, "; "))
}
