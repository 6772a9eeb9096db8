package tool

import (
	"context"
	"encoding/json"
	"testing"
)

func TestOutputTableTool_Execute(t *testing.T) {
	tl := NewOutputTableTool()
	input, _ := json.Marshal(OutputTableInput{
		Title:   "Ages",
		Headers: []string{"name", "age"},
		Rows:    [][]any{{"alice", 30}, {"bob", 25}},
	})
	result, err := tl.Execute(context.Background(), input, &Context{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Error != nil {
		t.Errorf("unexpected rejection: %v", result.Error)
	}
}

func TestOutputTableTool_RejectsMismatchedRowLength(t *testing.T) {
	tl := NewOutputTableTool()
	input, _ := json.Marshal(OutputTableInput{
		Title:   "Bad",
		Headers: []string{"a", "b"},
		Rows:    [][]any{{"only-one"}},
	})
	result, err := tl.Execute(context.Background(), input, &Context{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Error == nil {
		t.Error("expected row-length mismatch to be rejected")
	}
}

func TestCreatePlotTool_RejectsUnknownType(t *testing.T) {
	tl := NewCreatePlotTool()
	input, _ := json.Marshal(CreatePlotInput{Title: "X", Spec: map[string]any{"type": "not-a-type"}})
	result, err := tl.Execute(context.Background(), input, &Context{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Error == nil {
		t.Error("expected unrecognized chart type to be rejected")
	}
}

func TestCreatePlotTool_AcceptsKnownType(t *testing.T) {
	tl := NewCreatePlotTool()
	input, _ := json.Marshal(CreatePlotInput{Title: "X", Spec: map[string]any{"type": "bar"}})
	result, err := tl.Execute(context.Background(), input, &Context{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Error != nil {
		t.Errorf("unexpected rejection: %v", result.Error)
	}
}

func TestFinalizeTool_Execute(t *testing.T) {
	tl := NewFinalizeTool()
	input, _ := json.Marshal(FinalizeInput{Title: "My session"})
	result, err := tl.Execute(context.Background(), input, &Context{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Metadata["title"] != "My session" {
		t.Errorf("expected title to round-trip, got %v", result.Metadata["title"])
	}
}
