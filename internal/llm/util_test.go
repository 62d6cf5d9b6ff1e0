package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"risk_band\": \"HIGH\"}\n```"
	assert.Equal(t, `{"risk_band": "HIGH"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"score\": 42}\n```"
	assert.Equal(t, `{"score": 42}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_LanguageIdentifier(t *testing.T) {
	input := "```javascript\n{\"score\": 42}\n```"
	assert.Equal(t, `{"score": 42}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"score": 42}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	input := "  \n{\"score\": 42}\n  "
	assert.Equal(t, `{"score": 42}`, CleanJSONBlock(input))
}

func TestConfig_GetModel_Fallback(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierStandard: "gemini-2.5-flash"},
	}
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierAdvanced))

	cfg = &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", cfg.GetModel(TierLite))
}

func TestConfig_WithModel(t *testing.T) {
	cfg := DefaultConfig()
	next := cfg.WithModel(TierAdvanced, "gemini-3.0-pro")

	assert.Equal(t, "gemini-3.0-pro", next.GetModel(TierAdvanced))
	// Original config is untouched
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
}
