package types

// Severity grades how serious a finding is.
type Severity string

// Severity levels, lowest to highest
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Confidence grades how much trust to place in a finding.
type Confidence string

// Confidence levels
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Finding is a single gap, risk or ambiguity claim produced by an
// analysis phase. Evidence holds chunk IDs from the run's expanded
// context; citation integrity is enforced after all phases complete.
type Finding struct {
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Confidence  Confidence `json:"confidence"`
	Evidence    []string   `json:"evidence,omitempty"`
}

// RiskCategory classifies a delivery risk.
type RiskCategory string

// Risk categories
const (
	RiskTechnical RiskCategory = "technical"
	RiskBusiness  RiskCategory = "business"
	RiskSchedule  RiskCategory = "schedule"
)

// Risk is a classified delivery risk with severity and optional
// mitigation advice.
type Risk struct {
	Category    RiskCategory `json:"category"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
	Confidence  Confidence   `json:"confidence"`
	Mitigation  string       `json:"mitigation,omitempty"`
	Evidence    []string     `json:"evidence,omitempty"`
}
