package types

// AlignmentResult is the output of the functional alignment phase.
type AlignmentResult struct {
	AlignmentScore  float64   `json:"alignment_score"` // raw 0-100
	CoverageGaps    []Finding `json:"coverage_gaps"`
	MissingFeatures []Finding `json:"missing_features"`
}

// CoveredAC records an acceptance criterion that is backed by CR context.
type CoveredAC struct {
	Criterion string   `json:"criterion"`
	Evidence  []string `json:"evidence,omitempty"`
}

// ACGapResult is the output of the acceptance-criteria gap phase.
type ACGapResult struct {
	MissingAC []Finding   `json:"missing_ac"`
	CoveredAC []CoveredAC `json:"covered_ac"`
}

// BusinessRuleResult is the output of the business rule validation phase.
type BusinessRuleResult struct {
	RuleGaps         []Finding `json:"rule_gaps"`
	ConflictingRules []Finding `json:"conflicting_rules"`
}

// NFRResult is the output of the non-functional requirement phase.
type NFRResult struct {
	ImpliedNFRs []Finding `json:"implied_nfrs"`
	MissingNFRs []Finding `json:"missing_nfrs"`
}

// AmbiguityResult is the output of the ambiguity detection phase.
// AmbiguityScore is raw 0-100 where higher means more ambiguous.
type AmbiguityResult struct {
	AmbiguityScore   float64   `json:"ambiguity_score"`
	AmbiguousPhrases []Finding `json:"ambiguous_phrases"`
	UnclearAC        []Finding `json:"unclear_ac"`
}

// RiskResult is the output of the risk classification phase.
type RiskResult struct {
	Risks []Risk `json:"risks"`
}

// ReadinessResult is the output of the readiness scoring phase: one
// score per dimension plus an overall justification.
type ReadinessResult struct {
	Scores        []DimensionScore `json:"scores"`
	Justification string           `json:"justification"`
}

// CitationViolation records a finding that cited evidence absent from
// the run's expanded context.
type CitationViolation struct {
	Phase   string `json:"phase"`
	Finding string `json:"finding"`
	ChunkID string `json:"chunk_id"`
}

// EvidenceResult is the output of the evidence enforcement pass.
type EvidenceResult struct {
	Checked    int                 `json:"checked"`
	Violations []CitationViolation `json:"violations"`
}

// PhaseResults bundles every phase output for one validation run.
type PhaseResults struct {
	Alignment     *AlignmentResult    `json:"alignment,omitempty"`
	ACGaps        *ACGapResult        `json:"ac_gaps,omitempty"`
	BusinessRules *BusinessRuleResult `json:"business_rules,omitempty"`
	NFR           *NFRResult          `json:"nfr,omitempty"`
	Ambiguity     *AmbiguityResult    `json:"ambiguity,omitempty"`
	Risks         *RiskResult         `json:"risks,omitempty"`
	Readiness     *ReadinessResult    `json:"readiness,omitempty"`
	Evidence      *EvidenceResult     `json:"evidence,omitempty"`
}

// GapFindings collects every gap-like finding from the independent
// analysis phases. The risk classification phase consumes this summary.
func (p *PhaseResults) GapFindings() []Finding {
	var findings []Finding
	if p.Alignment != nil {
		findings = append(findings, p.Alignment.CoverageGaps...)
		findings = append(findings, p.Alignment.MissingFeatures...)
	}
	if p.ACGaps != nil {
		findings = append(findings, p.ACGaps.MissingAC...)
	}
	if p.BusinessRules != nil {
		findings = append(findings, p.BusinessRules.RuleGaps...)
		findings = append(findings, p.BusinessRules.ConflictingRules...)
	}
	if p.NFR != nil {
		findings = append(findings, p.NFR.MissingNFRs...)
	}
	if p.Ambiguity != nil {
		findings = append(findings, p.Ambiguity.AmbiguousPhrases...)
		findings = append(findings, p.Ambiguity.UnclearAC...)
	}
	return findings
}
