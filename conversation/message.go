package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleSystem is the system prompt author.
	RoleSystem Role = "system"
	// RoleUser is the human author.
	RoleUser Role = "user"
	// RoleAssistant is the model author.
	RoleAssistant Role = "assistant"
	// RoleTool marks a tool result addressed back to the model.
	RoleTool Role = "tool"
)

// ToolCall is one fully assembled function call requested by the model.
// Arguments is the raw JSON string exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Body is the closed set of message payloads. Exactly one concrete type is
// carried per message: Text, ToolRequest or ToolAnswer.
type Body interface {
	isBody()
}

// Text is plain message content.
type Text struct {
	Text string `json:"text"`
}

func (Text) isBody() {}

// ToolRequest carries the tool calls an assistant turn asked for. A message
// holding it has no visible text content.
type ToolRequest struct {
	Calls []ToolCall `json:"calls"`
}

func (ToolRequest) isBody() {}

// ToolAnswer is the result of executing one tool call, correlated by CallID.
// Content is always a JSON string, including for failures.
type ToolAnswer struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
}

func (ToolAnswer) isBody() {}

// Message is one immutable entry in a conversation log.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Body      Body      `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id and current timestamp.
func NewMessage(role Role, body Body) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// NewTextMessage creates a plain text message.
func NewTextMessage(role Role, text string) Message {
	return NewMessage(role, Text{Text: text})
}

// NewToolRequestMessage creates an assistant message carrying tool calls.
func NewToolRequestMessage(calls []ToolCall) Message {
	return NewMessage(RoleAssistant, ToolRequest{Calls: calls})
}

// NewToolAnswerMessage creates a tool result message for the given call id.
func NewToolAnswerMessage(callID, content string) Message {
	return NewMessage(RoleTool, ToolAnswer{CallID: callID, Content: content})
}

// TextContent returns the message text and true when the body is Text.
func (m Message) TextContent() (string, bool) {
	if t, ok := m.Body.(Text); ok {
		return t.Text, true
	}
	return "", false
}

// ToolCalls returns the requested calls when the body is a ToolRequest.
func (m Message) ToolCalls() []ToolCall {
	if tr, ok := m.Body.(ToolRequest); ok {
		return tr.Calls
	}
	return nil
}
