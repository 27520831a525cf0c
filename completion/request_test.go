package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justrach/cupertino-ink/conversation"
)

func TestNewRequest_TextMessages(t *testing.T) {
	history := []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
		conversation.NewTextMessage(conversation.RoleUser, "hi"),
	}

	req, err := NewRequest("", history, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, req.Model)
	assert.True(t, req.Stream)
	assert.Empty(t, req.Tools)
	assert.Empty(t, req.ToolChoice)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	require.NotNil(t, req.Messages[1].Content)
	assert.Equal(t, "hi", *req.Messages[1].Content)

	// tools and tool_choice must vanish from the serialized form entirely.
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"tools"`)
	assert.NotContains(t, string(raw), `"tool_choice"`)
}

func TestNewRequest_ToolRequestSerializesNullContent(t *testing.T) {
	history := []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
		conversation.NewTextMessage(conversation.RoleUser, "find it"),
		conversation.NewToolRequestMessage([]conversation.ToolCall{
			{ID: "call_1", Name: "find_order_by_name", Arguments: `{"customer_name":"Jane"}`},
		}),
	}

	req, err := NewRequest(DefaultModel, history, nil)
	require.NoError(t, err)

	wire := req.Messages[2]
	assert.Equal(t, "assistant", wire.Role)
	assert.Nil(t, wire.Content)
	require.Len(t, wire.ToolCalls, 1)
	assert.Equal(t, "function", wire.ToolCalls[0].Type)
	assert.Equal(t, "find_order_by_name", wire.ToolCalls[0].Function.Name)

	raw, err := json.Marshal(wire)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"content":null`)
	assert.Contains(t, string(raw), `"tool_calls"`)
}

func TestNewRequest_ToolAnswerCarriesCallID(t *testing.T) {
	history := []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
		conversation.NewTextMessage(conversation.RoleUser, "find it"),
		conversation.NewToolRequestMessage([]conversation.ToolCall{
			{ID: "call_1", Name: "find_order_by_name", Arguments: `{}`},
		}),
		conversation.NewToolAnswerMessage("call_1", `{"order_id":"ORD-JAN04"}`),
	}

	req, err := NewRequest(DefaultModel, history, nil)
	require.NoError(t, err)

	wire := req.Messages[3]
	assert.Equal(t, "tool", wire.Role)
	assert.Equal(t, "call_1", wire.ToolCallID)
	require.NotNil(t, wire.Content)
	assert.Equal(t, `{"order_id":"ORD-JAN04"}`, *wire.Content)
}

func TestNewRequest_ToolsEnableAutoChoice(t *testing.T) {
	history := []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
	}
	tools := []ToolSchema{{
		Type: "function",
		Function: FunctionSchema{
			Name:       "get_delivery_date",
			Parameters: map[string]any{"type": "object"},
		},
	}}

	req, err := NewRequest(DefaultModel, history, tools)
	require.NoError(t, err)

	assert.Equal(t, "auto", req.ToolChoice)
	assert.Len(t, req.Tools, 1)
}

func TestNewRequest_UnserializableSchemaFails(t *testing.T) {
	history := []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
	}
	tools := []ToolSchema{{
		Type: "function",
		Function: FunctionSchema{
			Name:       "bad",
			Parameters: map[string]any{"ch": make(chan int)},
		},
	}}

	_, err := NewRequest(DefaultModel, history, tools)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}
