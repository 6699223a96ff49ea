package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reviews")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenRouter, cfg.LLMProvider)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 500, cfg.LLMMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 4, cfg.RegenerateWorkers)
	assert.False(t, cfg.ExportEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reviews")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REGENERATE_WORKERS", "nope")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BUCKET_NAME", "exports")
	t.Setenv("AWS_ACCESS_KEY", "ak")
	t.Setenv("AWS_SECRET_KEY", "sk")

	cfg := LoadConfig()

	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 4, cfg.RegenerateWorkers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.True(t, cfg.ExportEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{LLMProvider: "openai", RegenerateWorkers: 0, JWTSecret: "s"}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL not set")
	assert.Contains(t, err.Error(), `LLM_PROVIDER "openai" is not supported`)
	assert.Contains(t, err.Error(), "REGENERATE_WORKERS")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH")
}
