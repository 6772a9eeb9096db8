package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_DIR", "LLM_API_KEY", "LLM_MODEL", "MAX_UPLOAD_BYTES",
		"AGENT_MAX_ITERATIONS", "AGENT_MAX_TURN_DURATION_SECONDS",
		"AGENT_MAX_RESULT_ROWS", "AGENT_CONTEXT_TOKEN_BUDGET",
		"SIGNING_SECRET", "TOKEN_LIFETIME_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-sonnet-4-5", cfg.LLMModel)
	assert.Equal(t, defaultMaxUploadBytes, cfg.MaxUploadBytes)
	assert.Equal(t, defaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, defaultMaxTurnDurationSecs, cfg.MaxTurnDuration)
	assert.Equal(t, defaultMaxResultRows, cfg.MaxResultRows)
	assert.Equal(t, defaultContextTokenBudget, cfg.ContextTokenBudget)
	assert.Equal(t, defaultTokenLifetimeSeconds, cfg.TokenLifetimeSeconds)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("DATA_DIR", "/tmp/opencode-test-data")
	t.Setenv("LLM_API_KEY", "sk-test-key")
	t.Setenv("LLM_MODEL", "openai/gpt-4o")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("AGENT_MAX_ITERATIONS", "10")
	t.Setenv("AGENT_MAX_TURN_DURATION_SECONDS", "60")
	t.Setenv("AGENT_MAX_RESULT_ROWS", "500")
	t.Setenv("AGENT_CONTEXT_TOKEN_BUDGET", "50000")
	t.Setenv("SIGNING_SECRET", "super-secret")
	t.Setenv("TOKEN_LIFETIME_SECONDS", "3600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/opencode-test-data", cfg.DataDir)
	assert.Equal(t, "sk-test-key", cfg.LLMAPIKey)
	assert.Equal(t, "openai/gpt-4o", cfg.LLMModel)
	assert.EqualValues(t, 2048, cfg.MaxUploadBytes)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 60, cfg.MaxTurnDuration)
	assert.Equal(t, 500, cfg.MaxResultRows)
	assert.Equal(t, 50000, cfg.ContextTokenBudget)
	assert.Equal(t, "super-secret", cfg.SigningSecret)
	assert.Equal(t, 3600, cfg.TokenLifetimeSeconds)
}

func TestLoad_UnparsableNumbersFallBackToDefault(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("AGENT_MAX_ITERATIONS", "not-a-number")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, defaultMaxUploadBytes, cfg.MaxUploadBytes)
}

func TestEnvIntOrDefault(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	assert.Equal(t, 42, envIntOrDefault("TEST_INT_VAR", 7))

	t.Setenv("TEST_INT_VAR", "")
	assert.Equal(t, 7, envIntOrDefault("TEST_INT_VAR", 7))
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_STR_VAR", "custom")
	assert.Equal(t, "custom", envOrDefault("TEST_STR_VAR", "fallback"))

	t.Setenv("TEST_STR_VAR", "")
	assert.Equal(t, "fallback", envOrDefault("TEST_STR_VAR", "fallback"))
}
