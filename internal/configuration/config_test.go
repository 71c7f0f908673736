package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENAI_MODEL",
		"OPENAI_BASE_URL", "ANTHROPIC_MODEL", "GEMINI_MODEL", "OLLAMA_HOST",
		"OLLAMA_MODEL", "LLM_PROVIDER", "DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	require.Equal(t, "gpt-5-nano", cfg.LLM.OpenAIModel)
	require.Equal(t, 1, cfg.Agent.MaxRounds)
	require.Equal(t, 120*time.Second, cfg.RequestTimeout())
	require.Empty(t, cfg.Source)
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[llm]
provider = "Anthropic"
anthropic_api_key = "sk-ant-file"
request_timeout_seconds = 30

[agent]
max_rounds = 3
max_plan_steps = 4
session_dir = "/tmp/sessions"
`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Source)
	require.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	require.Equal(t, 3, cfg.Agent.MaxRounds)
	require.Equal(t, 4, cfg.Agent.MaxPlanSteps)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout())

	key, err := cfg.APIKey()
	require.NoError(t, err)
	require.Equal(t, "sk-ant-file", key)

	dir, err := cfg.SessionDirectory()
	require.NoError(t, err)
	require.Equal(t, "/tmp/sessions", dir)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[llm]
provider = "openai"
openai_api_key = "from-file"
`)
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("LLM_PROVIDER", "openai-sdk")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAISDK, cfg.LLM.Provider)
	require.True(t, cfg.Agent.Debug)

	key, err := cfg.APIKey()
	require.NoError(t, err)
	require.Equal(t, "from-env", key)
}

func TestAPIKeyMissingCredential(t *testing.T) {
	clearEnv(t)
	for _, provider := range []string{ProviderOpenAI, ProviderOpenAISDK, ProviderAnthropic, ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.Provider = provider
			_, err := cfg.APIKey()
			require.Error(t, err)
			require.True(t, errorsx.HasReason(err, errorsx.ReasonMissingCredential))
		})
	}

	cfg := DefaultConfig()
	cfg.LLM.Provider = ProviderOllama
	key, err := cfg.APIKey()
	require.NoError(t, err)
	require.Empty(t, key)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "[llm]\nprovider = \"mistral\"\n"},
		{"zero rounds", "[agent]\nmax_rounds = 0\n"},
		{"zero plan steps", "[agent]\nmax_plan_steps = 0\n"},
		{"negative timeout", "[llm]\nrequest_timeout_seconds = -1\n"},
		{"bad toml", "[llm\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFrom(writeConfig(t, tt.body))
			require.Error(t, err)
			require.True(t, errorsx.HasReason(err, errorsx.ReasonInvalidConfig))
		})
	}
}
