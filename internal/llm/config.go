// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between model tiers and between the Gemini API and Vertex AI.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short extraction
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: resume parsing, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: dense multi-page vision parsing
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini API (API key auth)
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini served through Vertex AI (application default credentials)
	ProviderVertex Provider = "vertex"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	// Vertex AI only
	Project  string
	Location string
}

// DefaultConfig returns the default configuration (Gemini API)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultVertexConfig returns the default Vertex AI configuration for a project and region
func DefaultVertexConfig(project, location string) *Config {
	if location == "" {
		location = "us-central1"
	}
	cfg := DefaultGeminiConfig()
	cfg.Provider = ProviderVertex
	cfg.Project = project
	cfg.Location = location
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string),
		Project:  c.Project,
		Location: c.Location,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
