package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKey(t *testing.T) {
	ClearCache()
	prompt, err := Get("phases.json", "functional-alignment")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Story}}")
	assert.Contains(t, prompt, "{{.Context}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("phases.json", "no-such-phase")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "functional-alignment")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Story: {{.Story}} ({{.Story}})", map[string]string{"Story": "ST-1"})
	assert.Equal(t, "Story: ST-1 (ST-1)", out)
}

func TestPlaceholders(t *testing.T) {
	keys := Placeholders("a {{.Story}} b {{.Context}} c {{.Story}}")
	assert.Equal(t, []string{"Story", "Context"}, keys)

	assert.Empty(t, Placeholders("no placeholders here"))
}

func TestAllPhaseTemplatesPresent(t *testing.T) {
	for _, key := range []string{
		"functional-alignment",
		"ac-gap-detection",
		"business-rule-validation",
		"nfr-validation",
		"ambiguity-detection",
		"risk-classification",
		"readiness-scoring",
	} {
		prompt, err := Get("phases.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}
