package factories

import (
	"errors"

	"vozkit/core"
	openaillm "vozkit/services/openai/llm"
)

// LLMFactoryConfig holds provider-specific configs for generation service
// construction. Set exactly one provider config; the rest should be left nil.
// All non-OpenAI providers speak the OpenAI-compatible protocol and are
// implemented via the same OpenAI service with a custom base URL.
type LLMFactoryConfig struct {
	OllamaConfig     *openaillm.Config `json:"ollama,omitempty"`
	OpenAIConfig     *openaillm.Config `json:"openai,omitempty"`
	GroqConfig       *openaillm.Config `json:"groq,omitempty"`
	CerebrasConfig   *openaillm.Config `json:"cerebras,omitempty"`
	MistralConfig    *openaillm.Config `json:"mistral,omitempty"`
	OpenRouterConfig *openaillm.Config `json:"openrouter,omitempty"`
}

// Default base URLs for OpenAI-compatible providers.
const (
	ollamaBaseURL     = "http://localhost:11434/v1"
	groqBaseURL       = "https://api.groq.com/openai/v1"
	cerebrasBaseURL   = "https://api.cerebras.ai/v1"
	mistralBaseURL    = "https://api.mistral.ai/v1"
	openrouterBaseURL = "https://openrouter.ai/api/v1"
)

// hasProvider reports whether any provider config is set.
func (c LLMFactoryConfig) hasProvider() bool {
	return c.OllamaConfig != nil || c.OpenAIConfig != nil || c.GroqConfig != nil ||
		c.CerebrasConfig != nil || c.MistralConfig != nil || c.OpenRouterConfig != nil
}

// BuildLLMService constructs a generation service from the given factory
// config. Exactly one provider config must be non-nil.
func BuildLLMService(config LLMFactoryConfig, logger *core.Logger) (*openaillm.OpenAILLMService, error) {
	if config.OllamaConfig != nil {
		return buildOpenAICompatible(*config.OllamaConfig, ollamaBaseURL, "mistral", logger), nil
	}
	if config.OpenAIConfig != nil {
		return openaillm.NewOpenAILLMService(*config.OpenAIConfig, logger), nil
	}
	if config.GroqConfig != nil {
		return buildOpenAICompatible(*config.GroqConfig, groqBaseURL, "llama-3.3-70b-versatile", logger), nil
	}
	if config.CerebrasConfig != nil {
		return buildOpenAICompatible(*config.CerebrasConfig, cerebrasBaseURL, "llama-3.3-70b", logger), nil
	}
	if config.MistralConfig != nil {
		return buildOpenAICompatible(*config.MistralConfig, mistralBaseURL, "mistral-large-latest", logger), nil
	}
	if config.OpenRouterConfig != nil {
		return buildOpenAICompatible(*config.OpenRouterConfig, openrouterBaseURL, "openai/gpt-4o", logger), nil
	}
	return nil, errors.New("LLMFactoryConfig: no provider config specified")
}

// buildOpenAICompatible creates an OpenAI-compatible generation service,
// applying default base URL and model if not explicitly set in the config.
func buildOpenAICompatible(cfg openaillm.Config, defaultBaseURL, defaultModel string, logger *core.Logger) *openaillm.OpenAILLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return openaillm.NewOpenAILLMService(cfg, logger)
}
