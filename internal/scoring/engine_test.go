package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/story-validator/internal/types"
)

func uniformScores(score float64) []types.DimensionScore {
	dims := types.Dimensions()
	scores := make([]types.DimensionScore, len(dims))
	for i, dim := range dims {
		scores[i] = types.DimensionScore{Dimension: dim, Score: score}
	}
	return scores
}

func withScore(scores []types.DimensionScore, dim types.Dimension, score float64) []types.DimensionScore {
	out := make([]types.DimensionScore, len(scores))
	copy(out, scores)
	for i := range out {
		if out[i].Dimension == dim {
			out[i].Score = score
		}
	}
	return out
}

func TestCalculateReadinessScore_AllHundredNonInverted(t *testing.T) {
	engine := NewEngine()

	// best case on every dimension: 100 raw on direct dimensions,
	// 0 raw on inverted ones
	scores := uniformScores(100)
	scores = withScore(scores, types.DimAmbiguity, 0)
	scores = withScore(scores, types.DimRisk, 0)

	result, err := engine.CalculateReadinessScore(scores)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Overall)
	assert.Equal(t, types.RiskBandLow, ClassifyRisk(result.Overall))
}

func TestCalculateReadinessScore_AllFifty(t *testing.T) {
	engine := NewEngine()

	// 50 everywhere: inverted dimensions contribute 100-50 = 50 too,
	// so the weighted overall is exactly 50
	result, err := engine.CalculateReadinessScore(uniformScores(50))
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Overall)
	assert.Equal(t, types.RiskBandHigh, ClassifyRisk(result.Overall))
}

func TestCalculateReadinessScore_InvertsAmbiguity(t *testing.T) {
	engine := NewEngine()

	scores := uniformScores(50)
	scores = withScore(scores, types.DimAmbiguity, 100)

	result, err := engine.CalculateReadinessScore(scores)
	require.NoError(t, err)

	var ambiguity types.WeightedScore
	for _, ws := range result.Breakdown {
		if ws.Dimension == types.DimAmbiguity {
			ambiguity = ws
		}
	}
	assert.Equal(t, 100.0, ambiguity.Raw)
	assert.Equal(t, 0.0, ambiguity.Effective)
	assert.Equal(t, 0.0, ambiguity.Weighted)
	// maximally ambiguous lowers the overall below the uniform-50 case
	assert.Equal(t, 45.0, result.Overall)
}

func TestCalculateReadinessScore_InvertsRisk(t *testing.T) {
	engine := NewEngine()

	scores := uniformScores(50)
	scores = withScore(scores, types.DimRisk, 20)

	result, err := engine.CalculateReadinessScore(scores)
	require.NoError(t, err)

	var risk types.WeightedScore
	for _, ws := range result.Breakdown {
		if ws.Dimension == types.DimRisk {
			risk = ws
		}
	}
	assert.Equal(t, 20.0, risk.Raw)
	assert.Equal(t, 80.0, risk.Effective)
	assert.InDelta(t, 8.0, risk.Weighted, 1e-9)
}

func TestCalculateReadinessScore_WeightedComposite(t *testing.T) {
	engine := NewEngine()

	scores := []types.DimensionScore{
		{Dimension: types.DimFunctionalAlignment, Score: 80},
		{Dimension: types.DimAC, Score: 60},
		{Dimension: types.DimBusinessRules, Score: 70},
		{Dimension: types.DimNFR, Score: 40},
		{Dimension: types.DimAmbiguity, Score: 30},
		{Dimension: types.DimRisk, Score: 50},
		{Dimension: types.DimTraceability, Score: 90},
	}

	result, err := engine.CalculateReadinessScore(scores)
	require.NoError(t, err)

	// 80*.25 + 60*.15 + 70*.15 + 40*.15 + 70*.10 + 50*.10 + 90*.10
	assert.InDelta(t, 66.5, result.Overall, 1e-9)
	assert.Equal(t, types.RiskBandMedium, ClassifyRisk(result.Overall))
	assert.Len(t, result.Breakdown, 7)
	assert.NotEmpty(t, result.Rationale)
}

func TestCalculateReadinessScore_MissingDimension(t *testing.T) {
	engine := NewEngine()

	scores := uniformScores(50)[:6] // drops traceability

	_, err := engine.CalculateReadinessScore(scores)

	var incomplete *IncompleteScoreSetError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []types.Dimension{types.DimTraceability}, incomplete.Missing)
}

func TestCalculateReadinessScore_DuplicateDimension(t *testing.T) {
	engine := NewEngine()

	scores := append(uniformScores(50),
		types.DimensionScore{Dimension: types.DimAC, Score: 90})

	_, err := engine.CalculateReadinessScore(scores)

	var incomplete *IncompleteScoreSetError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []types.Dimension{types.DimAC}, incomplete.Duplicate)
}

func TestCalculateReadinessScore_OutOfRange(t *testing.T) {
	engine := NewEngine()

	scores := withScore(uniformScores(50), types.DimNFR, 101)

	_, err := engine.CalculateReadinessScore(scores)

	var rangeErr *ScoreRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, types.DimNFR, rangeErr.Dimension)
}

func TestClassifyRisk_Boundaries(t *testing.T) {
	assert.Equal(t, types.RiskBandLow, ClassifyRisk(100))
	assert.Equal(t, types.RiskBandLow, ClassifyRisk(80))
	assert.Equal(t, types.RiskBandMedium, ClassifyRisk(79))
	assert.Equal(t, types.RiskBandMedium, ClassifyRisk(60))
	assert.Equal(t, types.RiskBandHigh, ClassifyRisk(59))
	assert.Equal(t, types.RiskBandHigh, ClassifyRisk(0))
}

func TestNewEngineWithWeights_RejectsBadWeights(t *testing.T) {
	weights := DefaultWeights()
	weights[types.DimRisk] = 0.5 // sum now exceeds 1.0

	_, err := NewEngineWithWeights(weights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum")

	delete(weights, types.DimRisk)
	_, err = NewEngineWithWeights(weights)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no weight")
}
