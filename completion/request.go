package completion

import (
	"encoding/json"
	"fmt"

	"github.com/justrach/cupertino-ink/conversation"
	"github.com/justrach/cupertino-ink/tool"
)

// NewRequest transforms a conversation snapshot and tool schemas into a wire
// request. Assistant tool-call messages carry null content alongside their
// tool_calls array; tools and tool_choice are omitted entirely when no tools
// are offered. The result is round-trip checked so serialization problems
// surface here, as an EncodingError, rather than mid-stream.
func NewRequest(model string, history []conversation.Message, tools []ToolSchema) (Request, error) {
	if model == "" {
		model = DefaultModel
	}

	messages := make([]WireMessage, 0, len(history))
	for _, msg := range history {
		wire, err := wireMessage(msg)
		if err != nil {
			return Request{}, err
		}
		messages = append(messages, wire)
	}

	req := Request{
		Model:    model,
		Messages: messages,
		Stream:   true,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}

	if _, err := json.Marshal(req); err != nil {
		return Request{}, &EncodingError{Err: err}
	}

	return req, nil
}

func wireMessage(msg conversation.Message) (WireMessage, error) {
	switch body := msg.Body.(type) {
	case conversation.Text:
		content := body.Text
		return WireMessage{Role: string(msg.Role), Content: &content}, nil

	case conversation.ToolRequest:
		calls := make([]WireToolCall, len(body.Calls))
		for i, call := range body.Calls {
			calls[i] = WireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: WireFunction{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			}
		}
		return WireMessage{
			Role:      string(conversation.RoleAssistant),
			Content:   nil,
			ToolCalls: calls,
		}, nil

	case conversation.ToolAnswer:
		content := body.Content
		return WireMessage{
			Role:       string(conversation.RoleTool),
			Content:    &content,
			ToolCallID: body.CallID,
		}, nil

	default:
		return WireMessage{}, &EncodingError{
			Err: fmt.Errorf("unsupported message body %T", msg.Body),
		}
	}
}

// SchemasFromTools converts registered tools into wire tool schemas, in
// registration order.
func SchemasFromTools(tools []tool.Tool) []ToolSchema {
	out := make([]ToolSchema, len(tools))
	for i, t := range tools {
		out[i] = ToolSchema{
			Type: "function",
			Function: FunctionSchema{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return out
}
