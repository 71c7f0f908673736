package assistant

import (
	"context"
	"fmt"

	"github.com/reinhart/personaAgent/internal/configuration"
	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/reinhart/personaAgent/internal/logger"
)

// NewProviderFromConfig builds the configured provider. A missing API key
// fails here, before any request is made.
func NewProviderFromConfig(ctx context.Context, cfg *configuration.Config) (LLMProvider, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	logger.Debug("Selected Provider: %s", cfg.LLM.Provider)

	switch cfg.LLM.Provider {
	case configuration.ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.LLM.OpenAIModel, cfg.LLM.OpenAIBaseURL), nil
	case configuration.ProviderOpenAISDK:
		return NewOpenAISDKProvider(apiKey, cfg.LLM.OpenAIModel, cfg.LLM.OpenAIBaseURL), nil
	case configuration.ProviderAnthropic:
		return NewAnthropicProvider(apiKey, cfg.LLM.AnthropicModel), nil
	case configuration.ProviderGemini:
		p, err := NewGeminiProvider(ctx, apiKey, cfg.LLM.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return p, nil
	case configuration.ProviderOllama:
		return NewOllamaProvider(cfg.LLM.OllamaHost, cfg.LLM.OllamaModel), nil
	}
	return nil, errorsx.New(errorsx.ReasonInvalidConfig,
		"unknown LLM provider %q. Supported: openai, openai-sdk, anthropic, gemini, ollama", cfg.LLM.Provider)
}

// LoopOptions turns the agent settings into loop options
func LoopOptions(cfg *configuration.Config) []LoopOption {
	return []LoopOption{
		WithMaxRounds(cfg.Agent.MaxRounds),
		WithRequestTimeout(cfg.RequestTimeout()),
	}
}
