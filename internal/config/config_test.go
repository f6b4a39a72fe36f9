package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.RateLimit.SubmitPerHour)
	assert.Equal(t, 30, cfg.RateLimit.ValidatePerMin)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-9)

	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.InDelta(t, 0.2, cfg.Perplexity.Temperature, 1e-9)

	assert.Equal(t, "marketing-artifacts", cfg.Storage.Bucket)
	assert.Equal(t, 120, cfg.Renderer.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PERPLEXITY_MODEL", "sonar-deep-research")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "sonar-deep-research", cfg.Perplexity.Model)
}

func TestReadSecret_FromFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "gemini_key")
	require.NoError(t, os.WriteFile(secretPath, []byte("file-secret\n"), 0o600))

	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("GEMINI_API_KEY_FILE", secretPath)

	readSecret("GEMINI_API_KEY")
	assert.Equal(t, "file-secret", os.Getenv("GEMINI_API_KEY"))
}

func TestReadSecret_DirectValueWins(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(secretPath, []byte("from-file"), 0o600))

	t.Setenv("OPENAI_API_KEY", "direct")
	t.Setenv("OPENAI_API_KEY_FILE", secretPath)

	readSecret("OPENAI_API_KEY")
	assert.Equal(t, "direct", os.Getenv("OPENAI_API_KEY"))
}

func TestReadSecret_MissingFileIsNoop(t *testing.T) {
	os.Unsetenv("REDIS_PASSWORD")
	t.Setenv("REDIS_PASSWORD_FILE", "/nonexistent/secret")

	readSecret("REDIS_PASSWORD")
	assert.Empty(t, os.Getenv("REDIS_PASSWORD"))
}
