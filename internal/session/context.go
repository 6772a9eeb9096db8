package session

import (
	"os"
	"strconv"

	"github.com/opencode-ai/opencode/pkg/types"
)

// DefaultContextTokenBudget is the soft ceiling, in estimated tokens, on
// how much conversation history is replayed into the LLM each turn.
// Overridable per deployment via the AGENT_CONTEXT_TOKEN_BUDGET env var.
const DefaultContextTokenBudget = 100000

// contextTokenBudgetFromEnv resolves the configured budget, falling back to
// DefaultContextTokenBudget when unset or invalid.
func contextTokenBudgetFromEnv() int {
	if v := os.Getenv("AGENT_CONTEXT_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultContextTokenBudget
}

// truncateForReplay keeps the most recent messages that fit within budget
// estimated tokens, dropping the oldest first. The system prompt is built
// separately and is never subject to this budget. Deterministic: given the
// same messages and budget it always keeps the same suffix.
func truncateForReplay(messages []*types.Message, budget int) []*types.Message {
	if budget <= 0 {
		return messages
	}

	total := 0
	keepFrom := 0
	for i := len(messages) - 1; i >= 0; i-- {
		total += messages[i].TokenEstimate
		if total > budget {
			keepFrom = i + 1
			break
		}
	}

	return messages[keepFrom:]
}
