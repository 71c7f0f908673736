package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/reinhart/personaAgent/internal/errorsx"
)

// Supported provider names
const (
	ProviderOpenAI    = "openai"
	ProviderOpenAISDK = "openai-sdk"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Config represents the application configuration
type Config struct {
	LLM   LLMConfig   `toml:"llm"`
	Agent AgentConfig `toml:"agent"`

	// Path of the config file that was loaded, empty when running on defaults
	Source string `toml:"-"`
}

type LLMConfig struct {
	Provider              string `toml:"provider"`
	OpenAIKey             string `toml:"openai_api_key"`
	AnthropicKey          string `toml:"anthropic_api_key"`
	GeminiKey             string `toml:"gemini_api_key"`
	OpenAIModel           string `toml:"openai_model"`
	OpenAIBaseURL         string `toml:"openai_base_url"`
	AnthropicModel        string `toml:"anthropic_model"`
	GeminiModel           string `toml:"gemini_model"`
	OllamaHost            string `toml:"ollama_host"`
	OllamaModel           string `toml:"ollama_model"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

type AgentConfig struct {
	// MaxRounds bounds how many times tool results are sent back to the model in one turn
	MaxRounds    int    `toml:"max_rounds"`
	MaxPlanSteps int    `toml:"max_plan_steps"`
	Debug        bool   `toml:"debug"`
	SessionDir   string `toml:"session_dir"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:              ProviderOpenAI,
			OpenAIModel:           "gpt-5-nano",
			RequestTimeoutSeconds: 120,
		},
		Agent: AgentConfig{
			MaxRounds:    1,
			MaxPlanSteps: 8,
			Debug:        false,
		},
	}
}

// SearchPaths lists the config file locations in lookup order
func SearchPaths() []string {
	return []string{
		"./config.toml", // Current directory (for development)
		filepath.Join(os.Getenv("HOME"), ".config", "personaagent", "config.toml"), // User config (XDG)
		"/etc/personaagent/config.toml", // System-wide config
	}
}

// LoadConfig loads .env, then the first config file found, then environment overrides
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadConfigFrom(SearchPaths()...)
}

// LoadConfigFrom decodes the first existing file of paths over the defaults
// and applies environment overrides.
func LoadConfigFrom(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, config); err != nil {
				return nil, errorsx.Wrap(fmt.Errorf("failed to parse config file %s: %w", path, err), errorsx.ReasonInvalidConfig)
			}
			config.Source = path
			break
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"OPENAI_API_KEY", &c.LLM.OpenAIKey},
		{"ANTHROPIC_API_KEY", &c.LLM.AnthropicKey},
		{"GEMINI_API_KEY", &c.LLM.GeminiKey},
		{"OPENAI_MODEL", &c.LLM.OpenAIModel},
		{"OPENAI_BASE_URL", &c.LLM.OpenAIBaseURL},
		{"ANTHROPIC_MODEL", &c.LLM.AnthropicModel},
		{"GEMINI_MODEL", &c.LLM.GeminiModel},
		{"OLLAMA_HOST", &c.LLM.OllamaHost},
		{"OLLAMA_MODEL", &c.LLM.OllamaModel},
		{"LLM_PROVIDER", &c.LLM.Provider},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if debug := os.Getenv("DEBUG"); debug == "true" {
		c.Agent.Debug = true
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

// Validate rejects settings the agent cannot run with
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOpenAISDK, ProviderAnthropic, ProviderGemini, ProviderOllama:
	default:
		return errorsx.New(errorsx.ReasonInvalidConfig,
			"unknown llm provider %q (supported: openai, openai-sdk, anthropic, gemini, ollama)", c.LLM.Provider)
	}
	if c.Agent.MaxRounds < 1 {
		return errorsx.New(errorsx.ReasonInvalidConfig, "agent.max_rounds must be at least 1, got %d", c.Agent.MaxRounds)
	}
	if c.Agent.MaxPlanSteps < 1 {
		return errorsx.New(errorsx.ReasonInvalidConfig, "agent.max_plan_steps must be at least 1, got %d", c.Agent.MaxPlanSteps)
	}
	if c.LLM.RequestTimeoutSeconds < 0 {
		return errorsx.New(errorsx.ReasonInvalidConfig, "llm.request_timeout_seconds cannot be negative")
	}
	return nil
}

// RequestTimeout is the per model call timeout; zero means none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.LLM.RequestTimeoutSeconds) * time.Second
}

// APIKey returns the credential for the selected provider.
// Ollama needs none and always succeeds.
func (c *Config) APIKey() (string, error) {
	var key, env string
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOpenAISDK:
		key, env = c.LLM.OpenAIKey, "OPENAI_API_KEY"
	case ProviderAnthropic:
		key, env = c.LLM.AnthropicKey, "ANTHROPIC_API_KEY"
	case ProviderGemini:
		key, env = c.LLM.GeminiKey, "GEMINI_API_KEY"
	case ProviderOllama:
		return "", nil
	default:
		return "", errorsx.New(errorsx.ReasonInvalidConfig, "unknown llm provider %q", c.LLM.Provider)
	}
	if key == "" {
		return "", errorsx.New(errorsx.ReasonMissingCredential,
			"%s not set: export it or add it under [llm] in %s", env, SearchPaths()[1])
	}
	return key, nil
}

// SessionDirectory resolves where chat sessions are stored
func (c *Config) SessionDirectory() (string, error) {
	if c.Agent.SessionDir != "" {
		return c.Agent.SessionDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "personaAgent", "sessions"), nil
}
