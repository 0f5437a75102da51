package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-6)
}

func TestGetModel_Fallback(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierLite: "fallback-model"}}
	assert.Equal(t, "fallback-model", cfg.GetModel("unknown"))

	cfg = &Config{Models: map[ModelTier]string{TierLite: "lite", TierStandard: "standard"}}
	assert.Equal(t, "standard", cfg.GetModel(TierAdvanced))

	assert.Equal(t, "", (&Config{}).GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	cfg := DefaultConfig()
	custom := cfg.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced), "original must not change")
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite))
	assert.Equal(t, cfg.Temperature, custom.Temperature)

	assert.Equal(t, "solo", (&Config{}).WithModel(TierLite, "solo").GetModel(TierAdvanced))
}

func TestParseTier(t *testing.T) {
	tests := map[string]ModelTier{
		"standard":   TierStandard,
		" ADVANCED ": TierAdvanced,
		"lite":       TierLite,
		"":           TierLite,
		"turbo":      TierLite,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseTier(in), "input %q", in)
	}
}
