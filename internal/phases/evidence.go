package phases

import (
	"github.com/marcus/story-validator/internal/types"
)

// EnforceEvidence is the post-hoc evidence enforcement pass. It is not
// generative: no LLM call is made. Every finding that cites a chunk id
// absent from the run's expanded context is recorded as a citation
// violation and has its confidence downgraded to low. Covered
// acceptance criteria and readiness dimension scores are checked the
// same way. Findings are never discarded; the orchestrator logs each
// violation to the audit trail.
func EnforceEvidence(results *types.PhaseResults, ectx *types.ExpandedContext) *types.EvidenceResult {
	enforcement := &types.EvidenceResult{}

	check := func(phase Phase, f *types.Finding) {
		enforcement.Checked++
		violated := false
		for _, chunkID := range f.Evidence {
			if !ectx.Contains(chunkID) {
				violated = true
				enforcement.Violations = append(enforcement.Violations, types.CitationViolation{
					Phase:   string(phase),
					Finding: f.Description,
					ChunkID: chunkID,
				})
			}
		}
		if violated {
			f.Confidence = types.ConfidenceLow
		}
	}

	if results.Alignment != nil {
		for i := range results.Alignment.CoverageGaps {
			check(PhaseFunctionalAlignment, &results.Alignment.CoverageGaps[i])
		}
		for i := range results.Alignment.MissingFeatures {
			check(PhaseFunctionalAlignment, &results.Alignment.MissingFeatures[i])
		}
	}
	if results.ACGaps != nil {
		for i := range results.ACGaps.MissingAC {
			check(PhaseACGapDetection, &results.ACGaps.MissingAC[i])
		}
		// Covered criteria carry no confidence field; fabricated
		// citations are still recorded as violations.
		for i := range results.ACGaps.CoveredAC {
			covered := &results.ACGaps.CoveredAC[i]
			enforcement.Checked++
			for _, chunkID := range covered.Evidence {
				if !ectx.Contains(chunkID) {
					enforcement.Violations = append(enforcement.Violations, types.CitationViolation{
						Phase:   string(PhaseACGapDetection),
						Finding: covered.Criterion,
						ChunkID: chunkID,
					})
				}
			}
		}
	}
	if results.BusinessRules != nil {
		for i := range results.BusinessRules.RuleGaps {
			check(PhaseBusinessRules, &results.BusinessRules.RuleGaps[i])
		}
		for i := range results.BusinessRules.ConflictingRules {
			check(PhaseBusinessRules, &results.BusinessRules.ConflictingRules[i])
		}
	}
	if results.NFR != nil {
		for i := range results.NFR.ImpliedNFRs {
			check(PhaseNFRValidation, &results.NFR.ImpliedNFRs[i])
		}
		for i := range results.NFR.MissingNFRs {
			check(PhaseNFRValidation, &results.NFR.MissingNFRs[i])
		}
	}
	if results.Ambiguity != nil {
		for i := range results.Ambiguity.AmbiguousPhrases {
			check(PhaseAmbiguityDetection, &results.Ambiguity.AmbiguousPhrases[i])
		}
		for i := range results.Ambiguity.UnclearAC {
			check(PhaseAmbiguityDetection, &results.Ambiguity.UnclearAC[i])
		}
	}
	if results.Risks != nil {
		for i := range results.Risks.Risks {
			risk := &results.Risks.Risks[i]
			enforcement.Checked++
			violated := false
			for _, chunkID := range risk.Evidence {
				if !ectx.Contains(chunkID) {
					violated = true
					enforcement.Violations = append(enforcement.Violations, types.CitationViolation{
						Phase:   string(PhaseRiskClassification),
						Finding: risk.Description,
						ChunkID: chunkID,
					})
				}
			}
			if violated {
				risk.Confidence = types.ConfidenceLow
			}
		}
	}
	if results.Readiness != nil {
		// Dimension scores cite evidence too; a score justified by a
		// chunk the context never held is a violation like any other.
		for i := range results.Readiness.Scores {
			score := &results.Readiness.Scores[i]
			enforcement.Checked++
			for _, chunkID := range score.Evidence {
				if !ectx.Contains(chunkID) {
					enforcement.Violations = append(enforcement.Violations, types.CitationViolation{
						Phase:   string(PhaseReadinessScoring),
						Finding: string(score.Dimension),
						ChunkID: chunkID,
					})
				}
			}
		}
	}

	return enforcement
}
