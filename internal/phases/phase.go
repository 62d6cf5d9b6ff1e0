// Package phases implements the eight analysis phases of a validation
// run: prompt construction, LLM invocation, response validation and the
// post-hoc evidence enforcement pass.
package phases

import "github.com/marcus/story-validator/internal/llm"

// Phase identifies one analysis phase.
type Phase string

// The eight phases, in pipeline order. Phases 1-5 are independent of
// one another; risk classification and readiness scoring consume prior
// outputs; evidence enforcement is a non-generative post-hoc pass.
const (
	PhaseFunctionalAlignment Phase = "functional_alignment"
	PhaseACGapDetection      Phase = "ac_gap_detection"
	PhaseBusinessRules       Phase = "business_rule_validation"
	PhaseNFRValidation       Phase = "nfr_validation"
	PhaseAmbiguityDetection  Phase = "ambiguity_detection"
	PhaseRiskClassification  Phase = "risk_classification"
	PhaseReadinessScoring    Phase = "readiness_scoring"
	PhaseEvidenceEnforcement Phase = "evidence_enforcement"
)

// templateKeys maps phases to their prompt template keys in phases.json.
// Evidence enforcement has no template; it never calls the LLM.
var templateKeys = map[Phase]string{
	PhaseFunctionalAlignment: "functional-alignment",
	PhaseACGapDetection:      "ac-gap-detection",
	PhaseBusinessRules:       "business-rule-validation",
	PhaseNFRValidation:       "nfr-validation",
	PhaseAmbiguityDetection:  "ambiguity-detection",
	PhaseRiskClassification:  "risk-classification",
	PhaseReadinessScoring:    "readiness-scoring",
}

// templateVersions records the current version of each phase's prompt
// template. Versions are persisted into the validation result so a
// stored run can be traced to the exact prompts that produced it.
var templateVersions = map[Phase]string{
	PhaseFunctionalAlignment: "fa-v2",
	PhaseACGapDetection:      "acg-v1",
	PhaseBusinessRules:       "brv-v1",
	PhaseNFRValidation:       "nfr-v1",
	PhaseAmbiguityDetection:  "amb-v2",
	PhaseRiskClassification:  "risk-v1",
	PhaseReadinessScoring:    "ready-v1",
}

// tiers maps each generative phase to the model capability it needs.
var tiers = map[Phase]llm.ModelTier{
	PhaseFunctionalAlignment: llm.TierStandard,
	PhaseACGapDetection:      llm.TierLite,
	PhaseBusinessRules:       llm.TierStandard,
	PhaseNFRValidation:       llm.TierStandard,
	PhaseAmbiguityDetection:  llm.TierLite,
	PhaseRiskClassification:  llm.TierAdvanced,
	PhaseReadinessScoring:    llm.TierAdvanced,
}

// Tier returns the model tier used by a phase.
func (p Phase) Tier() llm.ModelTier {
	if tier, ok := tiers[p]; ok {
		return tier
	}
	return llm.TierStandard
}

// Version returns the prompt template version of a phase, or "" for
// phases without a template.
func (p Phase) Version() string {
	return templateVersions[p]
}

// TemplateVersions returns the version of every templated phase, keyed
// by phase name. The orchestrator copies this into the result's audit
// trail.
func TemplateVersions() map[string]string {
	versions := make(map[string]string, len(templateVersions))
	for phase, version := range templateVersions {
		versions[string(phase)] = version
	}
	return versions
}
