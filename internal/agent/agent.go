// Package agent provides the two fixed prompt-variant profiles that drive
// the Context Builder: one for the first turn of a session (auto_analyze)
// and one for every turn after it (follow_up).
package agent

// Agent is a named prompt/tool configuration for a turn.
type Agent struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BuiltIn     bool            `json:"builtIn"`
	Tools       map[string]bool `json:"tools"`
	Temperature float64         `json:"temperature,omitempty"`
	TopP        float64         `json:"topP,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
}

// ToolEnabled reports whether a tool is enabled for this agent. Every tool
// defaults to enabled unless explicitly disabled — both built-in profiles
// enable the full (closed) tool set, so this only matters if a future
// profile narrows it.
func (a *Agent) ToolEnabled(toolID string) bool {
	if enabled, ok := a.Tools[toolID]; ok {
		return enabled
	}
	return true
}

// Clone creates a deep copy of the agent.
func (a *Agent) Clone() *Agent {
	clone := &Agent{
		Name:        a.Name,
		Description: a.Description,
		BuiltIn:     a.BuiltIn,
		Temperature: a.Temperature,
		TopP:        a.TopP,
		Prompt:      a.Prompt,
	}
	if a.Tools != nil {
		clone.Tools = make(map[string]bool, len(a.Tools))
		for k, v := range a.Tools {
			clone.Tools[k] = v
		}
	}
	return clone
}

const (
	AutoAnalyze = "auto_analyze"
	FollowUp    = "follow_up"
)

// BuiltInAgents returns the two fixed prompt-variant profiles. Both enable
// every tool in the closed registry (sql_query, output_text, output_table,
// create_plot, finalize); they differ only in the instructions layered into
// the system prompt by internal/session's prompt builder.
func BuiltInAgents() map[string]*Agent {
	return map[string]*Agent{
		AutoAnalyze: {
			Name:        AutoAnalyze,
			Description: "Drives the first turn of a session: explore the dataset unprompted and produce an initial analysis",
			BuiltIn:     true,
			Temperature: 0.2,
			Tools: map[string]bool{
				"sql_query":     true,
				"output_text":   true,
				"output_table":  true,
				"create_plot":   true,
				"finalize":      true,
			},
			Prompt: autoAnalyzePrompt,
		},
		FollowUp: {
			Name:        FollowUp,
			Description: "Drives every turn after the first: answer the user's specific question about the dataset",
			BuiltIn:     true,
			Temperature: 0.2,
			Tools: map[string]bool{
				"sql_query":     true,
				"output_text":   true,
				"output_table":  true,
				"create_plot":   true,
				"finalize":      true,
			},
			Prompt: followUpPrompt,
		},
	}
}

const autoAnalyzePrompt = `You are starting a new analysis session for a dataset you have not seen before.
Explore its structure using sql_query, then produce a short initial summary of what
the data contains and a few notable observations. Prefer one or two output_table or
create_plot calls over a long wall of text. Call finalize once you've said enough to
orient the user.`

const followUpPrompt = `Answer the user's question about the dataset. Use sql_query to compute whatever
you need; never guess at values you haven't queried. Choose output_text, output_table,
or create_plot based on what best presents the answer. Call finalize exactly once you
have produced a complete answer.`

// DefaultAgent returns the profile used when none is specified.
func DefaultAgent() *Agent {
	return BuiltInAgents()[FollowUp]
}
