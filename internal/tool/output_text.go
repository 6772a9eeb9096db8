package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
)

const outputTextDescription = `Emits a markdown text answer to the user.

Usage:
- Use this for prose answers, summaries, and explanations.
- Prefer output_table or create_plot when the answer is naturally tabular or
  visual; don't paste a table rendered as markdown text here.`

// OutputTextTool emits a markdown body as a visible text event.
type OutputTextTool struct{}

// OutputTextInput is the input for the output_text tool.
type OutputTextInput struct {
	Markdown string `json:"markdown"`
}

// NewOutputTextTool creates a new output_text tool.
func NewOutputTextTool() *OutputTextTool {
	return &OutputTextTool{}
}

func (t *OutputTextTool) ID() string          { return "output_text" }
func (t *OutputTextTool) Description() string { return outputTextDescription }

func (t *OutputTextTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"markdown": {
				"type": "string",
				"description": "The markdown body to show the user"
			}
		},
		"required": ["markdown"]
	}`)
}

func (t *OutputTextTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params OutputTextInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return &Result{
		Title:  "Text",
		Output: "Displayed text to the user.",
		Metadata: map[string]any{
			"markdown": params.Markdown,
		},
	}, nil
}

func (t *OutputTextTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
