package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Extraction.Timeout)
	assert.True(t, cfg.Extraction.UseBrowser)
	assert.Equal(t, "pdflatex", cfg.Compile.Binary)
	assert.Equal(t, 30*time.Second, cfg.Compile.Timeout)
	assert.Equal(t, 2, cfg.Compile.Passes)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, 300*time.Second, cfg.Server.WriteTimeout)
}

func TestTailorBudget(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	// 2x10s extraction + 60s llm + 2x30s compile + 1m slot wait
	assert.Equal(t, 200*time.Second, cfg.TailorBudget())

	cfg.Compile.Passes = 3
	assert.Equal(t, 230*time.Second, cfg.TailorBudget())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
compile:
  timeout: 45s
  max_concurrent: 4
extraction:
  use_browser: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Compile.Timeout)
	assert.Equal(t, 4, cfg.Compile.MaxConcurrent)
	assert.False(t, cfg.Extraction.UseBrowser)
	assert.Equal(t, 2, cfg.Compile.Passes, "unset keys keep defaults")
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("RESUME_TAILOR_COMPILE_PASSES", "3")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Compile.Passes)
	assert.Equal(t, "key-123", cfg.LLM.APIKey)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("RESUME_TAILOR_COMPILE_PASSES", "0")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewJWTConfig(t *testing.T) {
	cfg, err := NewJWTConfig(AuthConfig{JWTSecret: "secret", ExpirationHours: 24})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Expiration())

	_, err = NewJWTConfig(AuthConfig{ExpirationHours: 24})
	assert.Error(t, err)

	_, err = NewJWTConfig(AuthConfig{JWTSecret: "secret"})
	assert.Error(t, err)
}
