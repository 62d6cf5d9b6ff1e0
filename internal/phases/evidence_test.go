package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/story-validator/internal/types"
)

func TestEnforceEvidence_ValidCitationsUntouched(t *testing.T) {
	results := &types.PhaseResults{
		Alignment: &types.AlignmentResult{
			CoverageGaps: []types.Finding{
				{Description: "refund flow", Severity: types.SeverityHigh,
					Confidence: types.ConfidenceHigh, Evidence: []string{"CR-001#s1"}},
			},
		},
	}

	enforcement := EnforceEvidence(results, testContext())

	assert.Equal(t, 1, enforcement.Checked)
	assert.Empty(t, enforcement.Violations)
	assert.Equal(t, types.ConfidenceHigh, results.Alignment.CoverageGaps[0].Confidence)
}

func TestEnforceEvidence_FabricatedCitationDowngradesConfidence(t *testing.T) {
	results := &types.PhaseResults{
		Alignment: &types.AlignmentResult{
			CoverageGaps: []types.Finding{
				{Description: "refund flow", Severity: types.SeverityHigh,
					Confidence: types.ConfidenceHigh, Evidence: []string{"CR-001#s1", "CR-999#s9"}},
			},
		},
	}

	enforcement := EnforceEvidence(results, testContext())

	require.Len(t, enforcement.Violations, 1)
	violation := enforcement.Violations[0]
	assert.Equal(t, string(PhaseFunctionalAlignment), violation.Phase)
	assert.Equal(t, "refund flow", violation.Finding)
	assert.Equal(t, "CR-999#s9", violation.ChunkID)

	// downgraded but never discarded
	require.Len(t, results.Alignment.CoverageGaps, 1)
	assert.Equal(t, types.ConfidenceLow, results.Alignment.CoverageGaps[0].Confidence)
}

func TestEnforceEvidence_ChecksEveryPhase(t *testing.T) {
	fabricated := []string{"GHOST#1"}
	results := &types.PhaseResults{
		Alignment: &types.AlignmentResult{
			CoverageGaps:    []types.Finding{{Description: "a", Evidence: fabricated}},
			MissingFeatures: []types.Finding{{Description: "b", Evidence: fabricated}},
		},
		ACGaps: &types.ACGapResult{
			MissingAC: []types.Finding{{Description: "c", Evidence: fabricated}},
			CoveredAC: []types.CoveredAC{{Criterion: "c2", Evidence: fabricated}},
		},
		BusinessRules: &types.BusinessRuleResult{
			RuleGaps:         []types.Finding{{Description: "d", Evidence: fabricated}},
			ConflictingRules: []types.Finding{{Description: "e", Evidence: fabricated}},
		},
		NFR: &types.NFRResult{
			ImpliedNFRs: []types.Finding{{Description: "f", Evidence: fabricated}},
			MissingNFRs: []types.Finding{{Description: "g", Evidence: fabricated}},
		},
		Ambiguity: &types.AmbiguityResult{
			AmbiguousPhrases: []types.Finding{{Description: "h", Evidence: fabricated}},
			UnclearAC:        []types.Finding{{Description: "i", Evidence: fabricated}},
		},
		Risks: &types.RiskResult{
			Risks: []types.Risk{{Description: "j", Category: types.RiskTechnical,
				Confidence: types.ConfidenceHigh, Evidence: fabricated}},
		},
		Readiness: &types.ReadinessResult{
			Scores: []types.DimensionScore{
				{Dimension: types.DimTraceability, Score: 80, Evidence: fabricated},
			},
		},
	}

	enforcement := EnforceEvidence(results, testContext())

	assert.Equal(t, 12, enforcement.Checked)
	assert.Len(t, enforcement.Violations, 12)
	assert.Equal(t, types.ConfidenceLow, results.Risks.Risks[0].Confidence)
}

func TestEnforceEvidence_DimensionScoreCitations(t *testing.T) {
	results := &types.PhaseResults{
		Readiness: &types.ReadinessResult{
			Scores: []types.DimensionScore{
				{Dimension: types.DimFunctionalAlignment, Score: 70, Evidence: []string{"CR-001#s1"}},
				{Dimension: types.DimTraceability, Score: 60, Evidence: []string{"FAKE#chunk"}},
			},
			Justification: "traceable to the billing CR",
		},
	}

	enforcement := EnforceEvidence(results, testContext())

	assert.Equal(t, 2, enforcement.Checked)
	require.Len(t, enforcement.Violations, 1)
	violation := enforcement.Violations[0]
	assert.Equal(t, string(PhaseReadinessScoring), violation.Phase)
	assert.Equal(t, string(types.DimTraceability), violation.Finding)
	assert.Equal(t, "FAKE#chunk", violation.ChunkID)

	// the score itself is kept; scores are never discarded
	assert.Len(t, results.Readiness.Scores, 2)
}

func TestEnforceEvidence_CoveredACCitations(t *testing.T) {
	results := &types.PhaseResults{
		ACGaps: &types.ACGapResult{
			CoveredAC: []types.CoveredAC{
				{Criterion: "retries stop after three failures", Evidence: []string{"CR-001#s1"}},
				{Criterion: "customer notified on final failure", Evidence: []string{"CR-404#s9"}},
			},
		},
	}

	enforcement := EnforceEvidence(results, testContext())

	assert.Equal(t, 2, enforcement.Checked)
	require.Len(t, enforcement.Violations, 1)
	assert.Equal(t, string(PhaseACGapDetection), enforcement.Violations[0].Phase)
	assert.Equal(t, "customer notified on final failure", enforcement.Violations[0].Finding)
	assert.Equal(t, "CR-404#s9", enforcement.Violations[0].ChunkID)
}

func TestEnforceEvidence_FindingsWithoutEvidencePass(t *testing.T) {
	results := &types.PhaseResults{
		Ambiguity: &types.AmbiguityResult{
			AmbiguousPhrases: []types.Finding{
				{Description: "vague wording", Confidence: types.ConfidenceMedium},
			},
		},
	}

	enforcement := EnforceEvidence(results, &types.ExpandedContext{})

	assert.Equal(t, 1, enforcement.Checked)
	assert.Empty(t, enforcement.Violations)
	assert.Equal(t, types.ConfidenceMedium, results.Ambiguity.AmbiguousPhrases[0].Confidence)
}

func TestEnforceEvidence_NilPhaseResultsSkipped(t *testing.T) {
	enforcement := EnforceEvidence(&types.PhaseResults{}, &types.ExpandedContext{})
	assert.Zero(t, enforcement.Checked)
	assert.Empty(t, enforcement.Violations)
}
