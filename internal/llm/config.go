// Package llm provides the language model client used for resume scoring.
package llm

import (
	"maps"
	"strings"
)

// ModelTier selects a model by capability rather than by name.
type ModelTier string

const (
	TierLite     ModelTier = "lite"
	TierStandard ModelTier = "standard"
	TierAdvanced ModelTier = "advanced"
)

// ParseTier maps a configuration string to a tier. Unknown values fall back to TierLite.
func ParseTier(s string) ModelTier {
	switch t := ModelTier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierStandard, TierAdvanced:
		return t
	}
	return TierLite
}

// Config maps tiers to concrete model names.
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
}

// Scoring wants repeatable answers, hence the low temperature.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
	}
}

// GetModel resolves tier to a model name. A tier without an entry falls
// back to standard and then lite; "" means nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if name, ok := c.Models[t]; ok {
			return name
		}
	}
	return ""
}

// WithModel returns a copy of c with tier pointed at model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	models := maps.Clone(c.Models)
	if models == nil {
		models = make(map[ModelTier]string, 1)
	}
	models[tier] = model
	return &Config{Models: models, Temperature: c.Temperature}
}
