package models

// AIConfig selects the provider and sampling parameters for generation.
// APIKey only travels from the UI to the host on setAIConfig; it is stripped
// before the config is persisted or echoed back.
type AIConfig struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	APIKey      *string `json:"apiKey,omitempty" yaml:"-"`
	HasAPIKey   bool    `json:"hasApiKey" yaml:"-"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"maxTokens" yaml:"max_tokens"`
}

// Redacted returns a copy with the key removed and HasAPIKey set from hasKey.
func (c AIConfig) Redacted(hasKey bool) AIConfig {
	c.APIKey = nil
	c.HasAPIKey = hasKey
	return c
}
