package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
)

const finalizeDescription = `Ends the turn.

Usage:
- Call this exactly once you have produced a complete answer.
- If title is provided and the session doesn't have one yet, it becomes the
  session's title.
- This is a terminator: the agent loop stops dispatching further tool calls
  once finalize has executed.`

// FinalizeTool is the agent loop's explicit terminator. The loop itself
// special-cases the "finalize" tool ID to stop iterating once it runs;
// FinalizeTool's own Execute only validates input and reports the
// requested title back through Metadata.
type FinalizeTool struct{}

// FinalizeInput is the input for the finalize tool.
type FinalizeInput struct {
	Title string `json:"title,omitempty"`
}

// NewFinalizeTool creates a new finalize tool.
func NewFinalizeTool() *FinalizeTool {
	return &FinalizeTool{}
}

func (t *FinalizeTool) ID() string          { return "finalize" }
func (t *FinalizeTool) Description() string { return finalizeDescription }

func (t *FinalizeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {
				"type": "string",
				"description": "Optional session title, set only if the session has none yet"
			}
		}
	}`)
}

func (t *FinalizeTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params FinalizeInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &params); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
	}

	return &Result{
		Title:  "Turn finalized",
		Output: "Turn complete.",
		Metadata: map[string]any{
			"title": params.Title,
		},
	}, nil
}

func (t *FinalizeTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
