package scoring

import (
	"fmt"
	"math"

	"github.com/marcus/story-validator/internal/types"
)

// defaultWeights is the fixed weighting of the readiness dimensions.
// The weights sum to 1.0; NewEngine asserts this so a weight edit can
// never silently skew the overall score.
var defaultWeights = map[types.Dimension]float64{
	types.DimFunctionalAlignment: 0.25,
	types.DimAC:                  0.15,
	types.DimBusinessRules:       0.15,
	types.DimNFR:                 0.15,
	types.DimAmbiguity:           0.10,
	types.DimRisk:                0.10,
	types.DimTraceability:        0.10,
}

// DefaultWeights returns a copy of the fixed dimension weights.
func DefaultWeights() map[types.Dimension]float64 {
	weights := make(map[types.Dimension]float64, len(defaultWeights))
	for dim, w := range defaultWeights {
		weights[dim] = w
	}
	return weights
}

func validateWeights(weights map[types.Dimension]float64) error {
	sum := 0.0
	for _, dim := range types.Dimensions() {
		w, ok := weights[dim]
		if !ok {
			return fmt.Errorf("no weight for dimension %s", dim)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %g for dimension %s", w, dim)
		}
		sum += w
	}
	if len(weights) != len(types.Dimensions()) {
		return fmt.Errorf("weights cover %d dimensions, want %d", len(weights), len(types.Dimensions()))
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights sum to %g, want 1.0", sum)
	}
	return nil
}
