package session

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/pkg/types"
)

// SystemPrompt builds the system prompt for one turn from the agent's
// prompt variant and the session's dataset profile.
type SystemPrompt struct {
	session *types.Session
	agent   *agent.Agent
}

// NewSystemPrompt creates a new system prompt builder.
func NewSystemPrompt(session *types.Session, ag *agent.Agent) *SystemPrompt {
	if ag == nil {
		ag = agent.DefaultAgent()
	}
	return &SystemPrompt{session: session, agent: ag}
}

// Build constructs the complete system prompt: the agent's prompt variant,
// then the dataset's data summary, then static tool guidelines.
func (s *SystemPrompt) Build() string {
	parts := []string{s.agent.Prompt}

	if s.session != nil {
		parts = append(parts, DataSummary(s.session.Dataset.Profile))
	}

	parts = append(parts, toolGuidelines)

	return strings.Join(parts, "\n\n")
}

// DataSummary renders the dataset profile into the textual block injected
// into the system prompt. It is a pure function of profile: identical
// profiles produce byte-identical output, with no wall-clock or randomness
// input, and columns are rendered in their stored (file) order.
func DataSummary(p types.Profile) string {
	var b strings.Builder

	b.WriteString("# Dataset\n\n")
	fmt.Fprintf(&b, "%d rows, %d columns.\n\n", p.RowCount, len(p.Columns))

	for _, col := range p.Columns {
		fmt.Fprintf(&b, "- `%s` (%s", col.Name, col.Type)
		if col.NullBucket != "" && col.NullBucket != "none" {
			fmt.Fprintf(&b, ", %s nulls", col.NullBucket)
		}
		b.WriteString(")")
		if len(col.SampleValues) > 0 {
			fmt.Fprintf(&b, " — e.g. %s", strings.Join(col.SampleValues, ", "))
		}
		b.WriteString("\n")
	}

	return b.String()
}

const toolGuidelines = `# Tool Usage Guidelines

1. Ground every factual claim in a sql_query result; never state a number you
   haven't queried for.
2. The only queryable table is named "data" — it is already mounted for you.
3. Prefer output_table for tabular answers and create_plot for visual ones
   over long prose; use output_text for explanations.
4. Call finalize exactly once, when your answer is complete.`
