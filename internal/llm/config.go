// Package llm provides centralized LLM configuration and client abstractions.
// Chat requests are expressed as role-tagged messages so every provider sees the
// same system/user split the prompts were written for.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple rewrites: translation, cleanup
	TierLite ModelTier = "lite"
	// TierStandard is for chunk summarization and linking
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for the heaviest prompts
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

// fallbackTiers is tried in order when a tier has no model of its own.
var fallbackTiers = []ModelTier{TierStandard, TierLite}

// providerModels are the shipped per-tier models. OpenAI's standard tier is
// the model the digest prompts were tuned on.
var providerModels = map[Provider]map[ModelTier]string{
	ProviderOpenAI: {
		TierLite:     "gpt-4o",
		TierStandard: "gpt-4.1",
		TierAdvanced: "gpt-4.1",
	},
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderAnthropic: {
		TierLite:     "claude-haiku-4-5",
		TierStandard: "claude-sonnet-4-5",
		TierAdvanced: "claude-opus-4-1",
	},
}

// Config holds the provider and its model per tier.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

func newConfig(p Provider) *Config {
	models := make(map[ModelTier]string, len(providerModels[p]))
	for tier, model := range providerModels[p] {
		models[tier] = model
	}
	return &Config{Provider: p, Models: models}
}

// DefaultOpenAIConfig returns the OpenAI defaults, also used for images and
// transcription regardless of the chat provider.
func DefaultOpenAIConfig() *Config { return newConfig(ProviderOpenAI) }

// DefaultAnthropicConfig returns the Anthropic defaults.
func DefaultAnthropicConfig() *Config { return newConfig(ProviderAnthropic) }

// ConfigFor returns the defaults for a provider name. Unknown or empty names
// get OpenAI.
func ConfigFor(provider string) *Config {
	p := Provider(provider)
	if _, ok := providerModels[p]; !ok {
		p = ProviderOpenAI
	}
	return newConfig(p)
}

// GetModel returns the model for tier, falling back to standard then lite.
// An empty string means nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, t := range fallbackTiers {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model set for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	return c.WithModels(map[string]string{string(tier): model})
}

// WithModels returns a copy of c with overrides keyed by tier name
// ("lite", "standard", "advanced"). Empty model names are ignored.
func (c *Config) WithModels(overrides map[string]string) *Config {
	out := &Config{Provider: c.Provider, Models: make(map[ModelTier]string, len(c.Models)+len(overrides))}
	for tier, model := range c.Models {
		out.Models[tier] = model
	}
	for tier, model := range overrides {
		if model != "" {
			out.Models[ModelTier(tier)] = model
		}
	}
	return out
}
