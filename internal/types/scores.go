package types

// Dimension names one axis of the readiness assessment. The set is
// fixed; every validation result carries each dimension exactly once.
type Dimension string

// The fixed dimension set
const (
	DimFunctionalAlignment Dimension = "functional_alignment"
	DimAC                  Dimension = "ac"
	DimBusinessRules       Dimension = "business_rules"
	DimNFR                 Dimension = "nfr"
	DimAmbiguity           Dimension = "ambiguity"
	DimRisk                Dimension = "risk"
	DimTraceability        Dimension = "traceability"
)

// Dimensions returns the full dimension set in canonical order.
func Dimensions() []Dimension {
	return []Dimension{
		DimFunctionalAlignment,
		DimAC,
		DimBusinessRules,
		DimNFR,
		DimAmbiguity,
		DimRisk,
		DimTraceability,
	}
}

// Inverted reports whether a high raw score on this dimension represents
// a worse outcome. Inverted dimensions contribute (100 - raw) to the
// weighted readiness score.
func (d Dimension) Inverted() bool {
	return d == DimAmbiguity || d == DimRisk
}

// DimensionScore is a 0-100 score on one dimension with its rationale
// and evidence chunk IDs.
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Rationale string    `json:"rationale,omitempty"`
	Evidence  []string  `json:"evidence,omitempty"`
}

// RiskBand classifies an overall readiness score.
type RiskBand string

// Risk bands
const (
	RiskBandLow    RiskBand = "LOW"
	RiskBandMedium RiskBand = "MEDIUM"
	RiskBandHigh   RiskBand = "HIGH"
)

// WeightedScore is one dimension's contribution to the overall score.
type WeightedScore struct {
	Dimension Dimension `json:"dimension"`
	Raw       float64   `json:"raw"`
	Effective float64   `json:"effective"`
	Weight    float64   `json:"weight"`
	Weighted  float64   `json:"weighted"`
}

// ReadinessScore is the weighted composite readiness assessment.
type ReadinessScore struct {
	Overall   float64         `json:"overall"`
	Breakdown []WeightedScore `json:"breakdown"`
	Rationale string          `json:"rationale"`
}
