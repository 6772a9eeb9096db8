package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
)

const outputTableDescription = `Emits a table to the user.

Usage:
- headers and every row in rows must have the same length.
- Use this once you've already gathered the data via sql_query; don't invent
  rows that weren't returned by a query.`

// OutputTableTool emits a title/headers/rows table as a visible event.
type OutputTableTool struct{}

// OutputTableInput is the input for the output_table tool.
type OutputTableInput struct {
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// NewOutputTableTool creates a new output_table tool.
func NewOutputTableTool() *OutputTableTool {
	return &OutputTableTool{}
}

func (t *OutputTableTool) ID() string          { return "output_table" }
func (t *OutputTableTool) Description() string { return outputTableDescription }

func (t *OutputTableTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {
				"type": "string",
				"description": "A short title for the table"
			},
			"headers": {
				"type": "array",
				"description": "Column headers",
				"items": {"type": "string"}
			},
			"rows": {
				"type": "array",
				"description": "Row values, each row the same length as headers",
				"items": {"type": "array"}
			}
		},
		"required": ["title", "headers", "rows"]
	}`)
}

func (t *OutputTableTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params OutputTableInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	for i, row := range params.Rows {
		if len(row) != len(params.Headers) {
			return &Result{
				Title:  "Table rejected",
				Output: fmt.Sprintf("row %d has %d values, expected %d to match headers", i, len(row), len(params.Headers)),
				Error:  fmt.Errorf("row length mismatch"),
			}, nil
		}
	}

	return &Result{
		Title:  params.Title,
		Output: fmt.Sprintf("Displayed table %q with %d row(s).", params.Title, len(params.Rows)),
		Metadata: map[string]any{
			"title":   params.Title,
			"headers": params.Headers,
			"rows":    params.Rows,
		},
	}, nil
}

func (t *OutputTableTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
