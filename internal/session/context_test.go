package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opencode-ai/opencode/pkg/types"
)

func msgWithTokens(n int) *types.Message {
	return &types.Message{TokenEstimate: n}
}

func TestTruncateForReplay_KeepsEverythingUnderBudget(t *testing.T) {
	messages := []*types.Message{msgWithTokens(10), msgWithTokens(20), msgWithTokens(30)}
	result := truncateForReplay(messages, 1000)
	assert.Len(t, result, 3)
}

func TestTruncateForReplay_DropsOldestFirst(t *testing.T) {
	messages := []*types.Message{msgWithTokens(50), msgWithTokens(50), msgWithTokens(50)}
	result := truncateForReplay(messages, 80)
	// Only the most recent message fits once its own cost plus the next
	// oldest would exceed the budget.
	assert.Len(t, result, 1)
	assert.Same(t, messages[2], result[0])
}

func TestTruncateForReplay_ZeroBudgetIsUnbounded(t *testing.T) {
	messages := []*types.Message{msgWithTokens(10), msgWithTokens(20)}
	result := truncateForReplay(messages, 0)
	assert.Len(t, result, 2)
}

func TestContextTokenBudgetFromEnv_Default(t *testing.T) {
	t.Setenv("AGENT_CONTEXT_TOKEN_BUDGET", "")
	assert.Equal(t, DefaultContextTokenBudget, contextTokenBudgetFromEnv())
}

func TestContextTokenBudgetFromEnv_Override(t *testing.T) {
	t.Setenv("AGENT_CONTEXT_TOKEN_BUDGET", "5000")
	assert.Equal(t, 5000, contextTokenBudgetFromEnv())
}
