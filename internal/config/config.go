package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/opencode-ai/opencode/pkg/types"
)

const (
	defaultMaxUploadBytes       int64 = 100 << 20 // 100 MiB
	defaultMaxIterations              = 15
	defaultMaxTurnDurationSecs         = 600
	defaultMaxResultRows              = 1000
	defaultContextTokenBudget        = 100000
	defaultTokenLifetimeSeconds       = 24 * 60 * 60
)

// Load builds a types.Config from environment variables, loading a local
// .env file first if one is present (godotenv.Load is a no-op when the
// file is missing). Numeric and duration variables fall back to sane
// defaults when unset or unparsable.
func Load() (*types.Config, error) {
	_ = godotenv.Load()

	cfg := &types.Config{
		DataDir:              envOrDefault("DATA_DIR", defaultDataDir()),
		LLMAPIKey:            os.Getenv("LLM_API_KEY"),
		LLMModel:             envOrDefault("LLM_MODEL", "anthropic/claude-sonnet-4-5"),
		MaxUploadBytes:       envInt64OrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		MaxIterations:        envIntOrDefault("AGENT_MAX_ITERATIONS", defaultMaxIterations),
		MaxTurnDuration:      envIntOrDefault("AGENT_MAX_TURN_DURATION_SECONDS", defaultMaxTurnDurationSecs),
		MaxResultRows:        envIntOrDefault("AGENT_MAX_RESULT_ROWS", defaultMaxResultRows),
		ContextTokenBudget:   envIntOrDefault("AGENT_CONTEXT_TOKEN_BUDGET", defaultContextTokenBudget),
		SigningSecret:        os.Getenv("SIGNING_SECRET"),
		TokenLifetimeSeconds: envIntOrDefault("TOKEN_LIFETIME_SECONDS", defaultTokenLifetimeSeconds),
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64OrDefault(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
