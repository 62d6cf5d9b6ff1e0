package scoring

import (
	"fmt"
	"strings"

	"github.com/marcus/story-validator/internal/types"
)

// IncompleteScoreSetError indicates the dimension scores handed to the
// engine do not cover every dimension exactly once.
type IncompleteScoreSetError struct {
	Missing   []types.Dimension
	Duplicate []types.Dimension
}

func (e *IncompleteScoreSetError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", joinDims(e.Missing)))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate %s", joinDims(e.Duplicate)))
	}
	return "incomplete dimension score set: " + strings.Join(parts, "; ")
}

// ScoreRangeError indicates a dimension score outside [0,100].
type ScoreRangeError struct {
	Dimension types.Dimension
	Score     float64
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("score %g for dimension %s is outside [0,100]", e.Score, e.Dimension)
}

func joinDims(dims []types.Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
