package completion

import "context"

// Defaults matching the local inference setup this module was built against.
const (
	// DefaultBaseURL is the local chat completions endpoint.
	DefaultBaseURL = "http://127.0.0.1:10240/v1/chat/completions"
	// DefaultModel is the model identifier sent when none is configured.
	DefaultModel = "lmstudio-community/Qwen2.5-7B-Instruct-MLX-4bit"
)

// Finish reasons reported by the stream. The reason is sticky: the first
// non-empty value observed for the chosen choice wins.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool_calls"
)

// FunctionSchema describes one callable function offered to the model.
type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolSchema wraps a function schema in the wire envelope.
type ToolSchema struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// WireFunction is the name/arguments pair of a serialized tool call.
type WireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// WireToolCall is a fully assembled tool call as it appears in an assistant
// message on the wire.
type WireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function WireFunction `json:"function"`
}

// WireMessage is one chat message in request form. Content is a pointer so
// assistant tool-call messages serialize it as an explicit JSON null.
type WireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []WireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// Request is the chat completions request body.
type Request struct {
	Model      string        `json:"model"`
	Messages   []WireMessage `json:"messages"`
	Tools      []ToolSchema  `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	Stream     bool          `json:"stream"`
}

// FunctionDelta is a partial name/arguments fragment inside a streamed
// tool-call delta. Arguments fragments are concatenated across chunks.
type FunctionDelta struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallDelta is one indexed tool-call fragment from a stream chunk.
// Fragments sharing an index belong to the same call.
type ToolCallDelta struct {
	Index    int           `json:"index"`
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Function FunctionDelta `json:"function"`
}

// StreamChunk is one decoded streaming event, already narrowed to the first
// choice.
type StreamChunk struct {
	ContentDelta   string
	ToolCallDeltas []ToolCallDelta
	FinishReason   string
}

// ToolCall is a fully assembled call produced by the Assembler or an
// Extractor. Index preserves the model's requested execution order.
type ToolCall struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Stream is a pull-based sequence of chunks. Next reports false when the
// stream ends, fails, or ctx is cancelled; Err distinguishes failure from
// normal completion.
type Stream interface {
	Next(ctx context.Context) bool
	Chunk() StreamChunk
	FinishReason() string
	Err() error
	Close() error
}

// Backend opens a model stream for a request. Implementations include the
// OpenAI-compatible HTTP client and the Anthropic adapter.
type Backend interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Wire payload shapes for decoding stream chunks. Only the fields the
// decoder consumes are declared.
type sseChunk struct {
	Choices []sseChoice `json:"choices"`
}

type sseChoice struct {
	Delta        sseDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type sseDelta struct {
	Role      string          `json:"role"`
	Content   *string         `json:"content"`
	ToolCalls []ToolCallDelta `json:"tool_calls"`
}
