// Package provider provides LLM provider abstraction using Eino framework.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/opencode-ai/opencode/pkg/types"
)

// Provider represents an LLM provider with Eino ChatModel.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Models returns the list of available models.
	Models() []types.Model

	// ChatModel returns the Eino ChatModel for this provider.
	ChatModel() model.ToolCallingChatModel

	// CreateCompletion creates a streaming completion.
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionStream, error)
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	Tools       []*schema.ToolInfo `json:"tools,omitempty"`
	MaxTokens   int               `json:"maxTokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	TopP        float64           `json:"topP,omitempty"`
	StopWords   []string          `json:"stopWords,omitempty"`
}

// CompletionStream wraps an Eino stream reader.
type CompletionStream struct {
	reader *schema.StreamReader[*schema.Message]
}

// NewCompletionStream creates a new completion stream.
func NewCompletionStream(reader *schema.StreamReader[*schema.Message]) *CompletionStream {
	return &CompletionStream{reader: reader}
}

// Recv receives the next message chunk from the stream.
func (s *CompletionStream) Recv() (*schema.Message, error) {
	return s.reader.Recv()
}

// Close closes the stream.
func (s *CompletionStream) Close() {
	s.reader.Close()
}

// ToolInfo represents a tool definition for the LLM.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ConvertToEinoTools converts internal tool definitions to Eino format.
func ConvertToEinoTools(tools []ToolInfo) []*schema.ToolInfo {
	result := make([]*schema.ToolInfo, len(tools))
	for i, t := range tools {
		// Parse parameters from JSON schema
		var params map[string]*schema.ParameterInfo
		if len(t.Parameters) > 0 {
			params = parseJSONSchemaToParams(t.Parameters)
		}

		result[i] = &schema.ToolInfo{
			Name: t.Name,
			Desc: t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		}
	}
	return result
}

// parseJSONSchemaToParams converts JSON Schema to Eino ParameterInfo.
func parseJSONSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var jsonSchema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}

	if err := json.Unmarshal(schemaJSON, &jsonSchema); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	for _, r := range jsonSchema.Required {
		requiredSet[r] = true
	}

	params := make(map[string]*schema.ParameterInfo)
	for name, prop := range jsonSchema.Properties {
		paramType := schema.String
		switch prop.Type {
		case "integer":
			paramType = schema.Integer
		case "number":
			paramType = schema.Number
		case "boolean":
			paramType = schema.Boolean
		case "array":
			paramType = schema.Array
		case "object":
			paramType = schema.Object
		}

		params[name] = &schema.ParameterInfo{
			Type:     paramType,
			Desc:     prop.Description,
			Required: requiredSet[name],
		}
	}

	return params
}

// ConvertFromEinoMessage converts an Eino message into the assistant
// message that will be appended to the Message Store once the loop has
// decided what kind it is (text/table/plot/query_result/internal); this
// only carries over the provider-facing fields common to any response.
func ConvertFromEinoMessage(msg *schema.Message, sessionID string) *types.Message {
	role := "assistant"
	switch msg.Role {
	case schema.User:
		role = "user"
	case schema.System:
		role = "system"
	}

	return &types.Message{
		SessionID: sessionID,
		Role:      role,
		Kind:      "internal",
		Text:      msg.Content,
	}
}

// ConvertToEinoMessages replays a session's stored messages into the
// format the LLM expects. Kind query_result has no message of its own in
// the replayed form: per spec.md §4.4 it is flattened into a brief textual
// form and folded onto the immediately preceding assistant message rather
// than sent as a separate turn. Kind internal is passed through verbatim
// as assistant reasoning; kind table/plot are rendered as a short textual
// summary so the model can refer back to what it already produced without
// re-sending full row data.
func ConvertToEinoMessages(messages []*types.Message) []*schema.Message {
	result := make([]*schema.Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Kind == "query_result" && len(result) > 0 {
			prev := result[len(result)-1]
			prev.Content = prev.Content + "\n" + renderMessageContent(msg)
			continue
		}

		role := schema.Assistant
		switch msg.Role {
		case "user":
			role = schema.User
		case "system":
			role = schema.System
		}

		einoMsg := &schema.Message{
			Role:    role,
			Content: renderMessageContent(msg),
		}
		if msg.ToolCallID != "" {
			einoMsg.ToolCallID = msg.ToolCallID
		}
		result = append(result, einoMsg)
	}

	return result
}

// renderMessageContent produces the textual form of a stored message used
// when replaying it back into the LLM's context.
func renderMessageContent(msg *types.Message) string {
	switch msg.Kind {
	case "query_result":
		sql, _ := msg.Payload["sql"].(string)
		rowCount, _ := msg.Payload["row_count"].(int)
		isError, _ := msg.Payload["is_error"].(bool)
		if isError {
			errMsg, _ := msg.Payload["error"].(string)
			return fmt.Sprintf("Ran query: %s\nFailed: %s", sql, errMsg)
		}
		return fmt.Sprintf("Ran query: %s\nReturned %d row(s).", sql, rowCount)
	case "table":
		title, _ := msg.Payload["title"].(string)
		return fmt.Sprintf("Produced table %q for the user.", title)
	case "plot":
		title, _ := msg.Payload["title"].(string)
		return fmt.Sprintf("Produced chart %q for the user.", title)
	default:
		return msg.Text
	}
}
