package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
)

const createPlotDescription = `Emits a declarative chart specification to the user.

Usage:
- spec must be a JSON object with a recognized chart-type discriminator
  field "type" (e.g. "bar", "line", "scatter", "pie").
- Gather the underlying values via sql_query first; don't invent data points.`

// chartTypes is the set of recognized chart-type discriminators. The spec
// itself is otherwise opaque to the runtime — it is forwarded to the client
// verbatim.
var chartTypes = map[string]bool{
	"bar":       true,
	"line":      true,
	"scatter":   true,
	"pie":       true,
	"area":      true,
	"histogram": true,
}

// CreatePlotTool emits a title/spec chart as a visible event.
type CreatePlotTool struct{}

// CreatePlotInput is the input for the create_plot tool.
type CreatePlotInput struct {
	Title string         `json:"title"`
	Spec  map[string]any `json:"spec"`
}

// NewCreatePlotTool creates a new create_plot tool.
func NewCreatePlotTool() *CreatePlotTool {
	return &CreatePlotTool{}
}

func (t *CreatePlotTool) ID() string          { return "create_plot" }
func (t *CreatePlotTool) Description() string { return createPlotDescription }

func (t *CreatePlotTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {
				"type": "string",
				"description": "A short title for the chart"
			},
			"spec": {
				"type": "object",
				"description": "A declarative chart spec with a type discriminator (bar/line/scatter/pie/area/histogram)"
			}
		},
		"required": ["title", "spec"]
	}`)
}

func (t *CreatePlotTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params CreatePlotInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if params.Spec == nil {
		return &Result{
			Title:  "Chart rejected",
			Output: "spec must be a JSON object",
			Error:  fmt.Errorf("missing spec"),
		}, nil
	}

	chartType, _ := params.Spec["type"].(string)
	if !chartTypes[chartType] {
		return &Result{
			Title:  "Chart rejected",
			Output: fmt.Sprintf("unrecognized chart type %q", chartType),
			Error:  fmt.Errorf("unrecognized chart type"),
		}, nil
	}

	return &Result{
		Title:  params.Title,
		Output: fmt.Sprintf("Displayed %s chart %q.", chartType, params.Title),
		Metadata: map[string]any{
			"title": params.Title,
			"spec":  params.Spec,
		},
	}, nil
}

func (t *CreatePlotTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
