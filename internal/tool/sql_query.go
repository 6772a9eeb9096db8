package tool

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"

	"github.com/opencode-ai/opencode/internal/query"
)

const sqlQueryDescription = `Runs a read-only SQL query against the uploaded dataset.

Usage:
- The dataset is mounted under the single table name "data" — no other table
  name is valid.
- Only SELECT/WITH statements are accepted; one statement per call.
- Results are capped (truncated, not an error, if the query would return more
  rows than the cap): 50 rows normally, 100 rows when for_plot is true.
- Set for_plot to true when this query's result will feed a create_plot call,
  to get the larger row cap chart data needs.
- Always include a short human-readable description of what the query computes.`

// SQLQueryTool runs validated read-only SQL against a session's dataset.
type SQLQueryTool struct{}

// SQLQueryInput is the input for the sql_query tool.
type SQLQueryInput struct {
	SQL         string `json:"sql"`
	Description string `json:"description"`
	ForPlot     bool   `json:"for_plot"`
}

// NewSQLQueryTool creates a new sql_query tool.
func NewSQLQueryTool() *SQLQueryTool {
	return &SQLQueryTool{}
}

func (t *SQLQueryTool) ID() string          { return "sql_query" }
func (t *SQLQueryTool) Description() string { return sqlQueryDescription }

func (t *SQLQueryTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"sql": {
				"type": "string",
				"description": "A single SELECT or WITH statement against the table named data"
			},
			"description": {
				"type": "string",
				"description": "A short human-readable description of what this query computes"
			},
			"for_plot": {
				"type": "boolean",
				"description": "Set true when this query feeds a create_plot call, to get the larger plot-source row cap"
			}
		},
		"required": ["sql", "description"]
	}`)
}

func (t *SQLQueryTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params SQLQueryInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if toolCtx.Engine == nil {
		return nil, fmt.Errorf("no dataset bound to this session")
	}

	limit := query.ToolResultLimit
	if params.ForPlot {
		limit = query.PlotSourceLimit
	}
	result, err := toolCtx.Engine.Execute(ctx, params.SQL, limit, 0)
	if err != nil {
		toolCtx.SetMetadata("Query failed", map[string]any{
			"sql":      params.SQL,
			"is_error": true,
		})
		return &Result{
			Title:  "Query failed",
			Output: fmt.Sprintf("query failed: %s", err.Error()),
			Error:  err,
			Metadata: map[string]any{
				"sql":         params.SQL,
				"description": params.Description,
				"is_error":    true,
				"error":       err.Error(),
			},
		}, nil
	}

	toolCtx.SetMetadata("Query succeeded", map[string]any{
		"sql":       params.SQL,
		"row_count": len(result.Rows),
		"truncated": result.Truncated,
	})

	output, err := json.Marshal(result.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Result{
		Title:  params.Description,
		Output: string(output),
		Metadata: map[string]any{
			"sql":         params.SQL,
			"description": params.Description,
			"columns":     result.Columns,
			"rows":        result.Rows,
			"row_count":   len(result.Rows),
			"truncated":   result.Truncated,
			"is_error":    false,
		},
	}, nil
}

func (t *SQLQueryTool) EinoTool() einotool.InvokableTool {
	return &einoToolWrapper{tool: t}
}
