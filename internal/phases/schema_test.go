package phases

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every generative phase ships a response schema, and each must be
// valid JSON that compiles.
func TestAllPhaseSchemasCompile(t *testing.T) {
	generative := []Phase{
		PhaseFunctionalAlignment,
		PhaseACGapDetection,
		PhaseBusinessRules,
		PhaseNFRValidation,
		PhaseAmbiguityDetection,
		PhaseRiskClassification,
		PhaseReadinessScoring,
	}

	for _, phase := range generative {
		t.Run(string(phase), func(t *testing.T) {
			data, err := schemaFiles.ReadFile("schemas/" + string(phase) + ".json")
			require.NoError(t, err, "phase should ship a schema file")

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(data, &decoded), "schema should be valid JSON")
			assert.NotEmpty(t, decoded["required"], "schema should declare required fields")

			_, err = loadSchema(phase)
			assert.NoError(t, err, "schema should compile")
		})
	}
}

func TestLoadSchemaUnknownPhase(t *testing.T) {
	_, err := loadSchema(Phase("nonexistent_phase"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response schema")
}
