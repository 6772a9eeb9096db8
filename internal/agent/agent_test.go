package agent

import "testing"

func TestBuiltInAgents_BothVariantsPresent(t *testing.T) {
	agents := BuiltInAgents()
	if _, ok := agents[AutoAnalyze]; !ok {
		t.Errorf("expected %q profile", AutoAnalyze)
	}
	if _, ok := agents[FollowUp]; !ok {
		t.Errorf("expected %q profile", FollowUp)
	}
}

func TestAgent_ToolEnabled(t *testing.T) {
	a := BuiltInAgents()[FollowUp]

	for _, tool := range []string{"sql_query", "output_text", "output_table", "create_plot", "finalize"} {
		if !a.ToolEnabled(tool) {
			t.Errorf("expected tool %q to be enabled", tool)
		}
	}

	if !a.ToolEnabled("unknown_tool") {
		t.Errorf("expected unconfigured tool to default to enabled")
	}
}

func TestAgent_Clone(t *testing.T) {
	a := BuiltInAgents()[AutoAnalyze]
	clone := a.Clone()

	clone.Tools["sql_query"] = false
	if !a.Tools["sql_query"] {
		t.Errorf("mutating clone's Tools map affected the original")
	}
}

func TestDefaultAgent_IsFollowUp(t *testing.T) {
	if DefaultAgent().Name != FollowUp {
		t.Errorf("DefaultAgent() = %s, want %s", DefaultAgent().Name, FollowUp)
	}
}
