package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/opencode-ai/opencode/internal/provider"
	"github.com/opencode-ai/opencode/pkg/types"
)

// drainedResponse is one model turn's fully-accumulated output: the text
// it produced, the tool calls it requested (in first-seen order), the
// finish reason it reported, and token usage if the provider sent it.
type drainedResponse struct {
	Text         string
	ToolCalls    []schema.ToolCall
	FinishReason string
	Tokens       *types.TokenUsage
}

// pendingToolCall accumulates one tool call's streamed argument deltas.
type pendingToolCall struct {
	id        string
	name      string
	arguments strings.Builder
	order     int
}

// drainStream reads every chunk off stream until EOF, accumulating text
// and tool-call arguments. Eino providers vary in whether each chunk's
// Content is a delta or the full accumulation-to-date; both are handled by
// checking whether the new content extends the one already seen.
func drainStream(ctx context.Context, stream *provider.CompletionStream) (*drainedResponse, error) {
	var accumulatedContent string
	toolCalls := make(map[string]*pendingToolCall)
	var order []string
	resp := &drainedResponse{}

	for {
		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		default:
		}

		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return resp, err
		}

		if msg.Content != "" {
			if strings.HasPrefix(msg.Content, accumulatedContent) {
				accumulatedContent = msg.Content
			} else {
				accumulatedContent += msg.Content
			}
		}

		for _, tc := range msg.ToolCalls {
			key := tc.ID
			if key == "" && tc.Index != nil {
				key = fmt.Sprintf("idx:%d", *tc.Index)
			}
			if key == "" {
				continue
			}

			call, ok := toolCalls[key]
			if !ok {
				call = &pendingToolCall{id: tc.ID, order: len(order)}
				toolCalls[key] = call
				order = append(order, key)
			}
			if tc.ID != "" {
				call.id = tc.ID
			}
			if tc.Function.Name != "" {
				call.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				call.arguments.WriteString(tc.Function.Arguments)
			}
		}

		if msg.ResponseMeta != nil {
			if msg.ResponseMeta.Usage != nil {
				resp.Tokens = &types.TokenUsage{
					Input:  msg.ResponseMeta.Usage.PromptTokens,
					Output: msg.ResponseMeta.Usage.CompletionTokens,
				}
			}
			if msg.ResponseMeta.FinishReason != "" {
				resp.FinishReason = msg.ResponseMeta.FinishReason
			}
		}
	}

	resp.Text = accumulatedContent
	for _, key := range order {
		call := toolCalls[key]
		resp.ToolCalls = append(resp.ToolCalls, schema.ToolCall{
			ID: call.id,
			Function: schema.FunctionCall{
				Name:      call.name,
				Arguments: call.arguments.String(),
			},
		})
	}

	if resp.FinishReason == "" {
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = "tool_calls"
		} else {
			resp.FinishReason = "stop"
		}
	}

	return resp, nil
}
