package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/opencode-ai/opencode/internal/agent"
	"github.com/opencode-ai/opencode/internal/event"
	"github.com/opencode-ai/opencode/internal/tool"
	"github.com/opencode-ai/opencode/pkg/types"
)

// dispatchResult reports the side effects of one tool call back to the
// loop: whether it produced a visible (text/table/plot/query_result)
// event, whether it changed the underlying data, and whether it was
// finalize and so should end the turn.
type dispatchResult struct {
	visible     bool
	dataUpdated bool
	terminate   bool
	titleUpdate string
}

// dispatchToolCall executes one model-requested tool call, persists its
// assistant-role result message for replay, and publishes the matching
// transport event for whichever of the five closed tools was invoked. A
// tool failure (bad SQL, unknown chart type, missing tool) is fed back to
// the model as a normal tool-result message rather than surfaced as a Go
// error — only a call that could not be recorded at all returns an error.
func (p *Processor) dispatchToolCall(ctx context.Context, sessionID string, session *types.Session, call schema.ToolCall, ag *agent.Agent, state *sessionState) (dispatchResult, error) {
	t, ok := p.toolRegistry.Get(call.Function.Name)
	if !ok {
		p.recordToolResult(ctx, sessionID, call, fmt.Sprintf("unknown tool %q", call.Function.Name))
		return dispatchResult{}, nil
	}

	abortCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(abortCh)
	}()

	toolCtx := &tool.Context{
		SessionID: sessionID,
		CallID:    call.ID,
		Agent:     ag.Name,
		AbortCh:   abortCh,
		Engine:    state.engine,
	}

	result, err := t.Execute(ctx, json.RawMessage(call.Function.Arguments), toolCtx)
	if err != nil {
		p.recordToolResult(ctx, sessionID, call, fmt.Sprintf("tool error: %s", err.Error()))
		return dispatchResult{}, nil
	}

	if result.Error != nil {
		p.recordToolResult(ctx, sessionID, call, result.Output)
		return dispatchResult{}, nil
	}

	switch t.ID() {
	case "sql_query":
		payload := result.Metadata
		msg := p.toolMessage(sessionID, call, "query_result", payload)
		p.appendMessage(ctx, sessionID, msg)

		data := event.QueryResultData{
			Description: asString(payload["description"]),
			SQL:         asString(payload["sql"]),
			Columns:     asStringSlice(payload["columns"]),
			Rows:        asMapSlice(payload["rows"]),
			RowCount:    asInt(payload["row_count"]),
			Truncated:   asBool(payload["truncated"]),
			IsError:     asBool(payload["is_error"]),
			Error:       asString(payload["error"]),
		}
		p.publish(sessionID, event.Event{Type: event.QueryResult, Data: data})
		return dispatchResult{visible: true}, nil

	case "output_text":
		text := asString(result.Metadata["markdown"])
		msg := p.toolMessage(sessionID, call, "text", nil)
		msg.Text = text
		p.appendMessage(ctx, sessionID, msg)
		p.publish(sessionID, event.Event{Type: event.Text, Data: event.TextData{Text: text}})
		return dispatchResult{visible: true}, nil

	case "output_table":
		payload := result.Metadata
		msg := p.toolMessage(sessionID, call, "table", payload)
		p.appendMessage(ctx, sessionID, msg)
		p.publish(sessionID, event.Event{Type: event.Table, Data: event.TableData{
			Title:   asString(payload["title"]),
			Headers: asStringSlice(payload["headers"]),
			Rows:    asRows(payload["rows"]),
		}})
		return dispatchResult{visible: true}, nil

	case "create_plot":
		payload := result.Metadata
		msg := p.toolMessage(sessionID, call, "plot", payload)
		p.appendMessage(ctx, sessionID, msg)
		spec, _ := payload["spec"].(map[string]any)
		p.publish(sessionID, event.Event{Type: event.Plot, Data: event.PlotData{
			Title: asString(payload["title"]),
			Spec:  spec,
		}})
		return dispatchResult{visible: true}, nil

	case "finalize":
		msg := p.toolMessage(sessionID, call, "internal", nil)
		msg.Text = "finalized"
		p.appendMessage(ctx, sessionID, msg)
		return dispatchResult{terminate: true, titleUpdate: asString(result.Metadata["title"])}, nil

	default:
		p.recordToolResult(ctx, sessionID, call, result.Output)
		return dispatchResult{}, nil
	}
}

// recordToolResult appends a plain-text assistant-role message, used for
// unknown tools and tool-level failures that the model should see.
func (p *Processor) recordToolResult(ctx context.Context, sessionID string, call schema.ToolCall, text string) {
	msg := p.toolMessage(sessionID, call, "internal", nil)
	msg.Text = text
	p.appendMessage(ctx, sessionID, msg)
}

// toolMessage builds the assistant-role message recording one tool call's
// visible output. Every tool result is appended with role "assistant" per
// spec.md §4.2/§4.4 — the Message Store has no separate "tool" role.
func (p *Processor) toolMessage(sessionID string, call schema.ToolCall, kind string, payload map[string]any) *types.Message {
	msg := p.newMessage(sessionID, "assistant", kind)
	msg.ToolCallID = call.ID
	msg.Payload = payload
	msg.TokenEstimate = types.EstimateTokens(fmt.Sprintf("%v", payload))
	return msg
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, len(s))
		for i, e := range s {
			out[i] = asString(e)
		}
		return out
	default:
		return nil
	}
}

func asRows(v any) [][]any {
	rows, _ := v.([][]any)
	return rows
}

func asMapSlice(v any) []map[string]any {
	rows, _ := v.([]map[string]any)
	return rows
}
