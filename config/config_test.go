package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 400, cfg.LLM.MaxTokens)
	assert.Equal(t, 12, cfg.Run.MaxTurns)
	assert.Equal(t, time.Duration(0), cfg.Run.Delay())
	assert.Equal(t, "", cfg.Run.FirstSpeaker)
	assert.Equal(t, "", cfg.Mongo.URI)
	assert.Equal(t, "negotiation", cfg.Mongo.Database)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEGOSIM_LLM_MODEL", "gpt-4o")
	t.Setenv("NEGOSIM_LLM_TEMPERATURE", "1.1")
	t.Setenv("NEGOSIM_RUN_MAX_TURNS", "8")
	t.Setenv("NEGOSIM_SERVER_ADDR", ":9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 1.1, cfg.LLM.Temperature)
	assert.Equal(t, 8, cfg.Run.MaxTurns)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "server:\n" +
		"  addr: \":9090\"\n" +
		"llm:\n" +
		"  provider: gemini\n" +
		"  api_key: file-key\n" +
		"  model: gemini-2.0-flash\n" +
		"run:\n" +
		"  max_turns: 6\n" +
		"  turn_delay: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 6, cfg.Run.MaxTurns)
	assert.Equal(t, 500*time.Millisecond, cfg.Run.Delay())
	// Untouched keys keep their defaults.
	assert.Equal(t, 400, cfg.LLM.MaxTokens)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("NEGOSIM_LLM_PROVIDER", "cohere")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Run("gemini falls back to GEMINI_API_KEY", func(t *testing.T) {
		t.Setenv("NEGOSIM_LLM_PROVIDER", "gemini")
		t.Setenv("NEGOSIM_LLM_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "g-key", cfg.LLM.APIKey)
	})

	t.Run("openai falls back to OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("NEGOSIM_LLM_PROVIDER", "openai")
		t.Setenv("NEGOSIM_LLM_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "sk-fallback")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "sk-fallback", cfg.LLM.APIKey)
	})

	t.Run("explicit key wins over the environment fallback", func(t *testing.T) {
		t.Setenv("NEGOSIM_LLM_PROVIDER", "openai")
		t.Setenv("NEGOSIM_LLM_API_KEY", "sk-explicit")
		t.Setenv("OPENAI_API_KEY", "sk-fallback")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "sk-explicit", cfg.LLM.APIKey)
	})
}

func TestRunConfigDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), RunConfig{TurnDelay: 0}.Delay())
	assert.Equal(t, 1500*time.Millisecond, RunConfig{TurnDelay: 1.5}.Delay())
}

func TestValidate(t *testing.T) {
	base := Config{
		Server: ServerConfig{Addr: ":8080"},
		LLM:    LLMConfig{Provider: ProviderOpenAI},
	}

	t.Run("valid", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty addr", func(t *testing.T) {
		cfg := base
		cfg.Server.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("mongo uri without database", func(t *testing.T) {
		cfg := base
		cfg.Mongo = MongoConfig{URI: "mongodb://localhost:27017"}
		assert.Error(t, cfg.Validate())
	})
}
