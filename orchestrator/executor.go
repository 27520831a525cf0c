package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/justrach/cupertino-ink/completion"
	"github.com/justrach/cupertino-ink/logging"
	"github.com/justrach/cupertino-ink/tool"
)

// ToolResult pairs a call id with its JSON content. Content is always valid
// JSON, including for failures, so it can re-enter the conversation as-is.
type ToolResult struct {
	CallID  string
	Content string
}

// executor runs assembled tool calls against the registry. Every failure
// mode (unknown function, bad arguments, handler error, panic) is folded
// into an error payload instead of aborting the turn; the model sees the
// failure and can react to it.
type executor struct {
	registry *tool.Registry
	logger   logging.Logger
}

// toolCallRecorder is the richer recording hook offered by loggers such as
// logging.InkLogger.
type toolCallRecorder interface {
	LogToolCall(tool string, dur time.Duration, err error)
}

func newExecutor(registry *tool.Registry, logger logging.Logger) *executor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &executor{registry: registry, logger: logger}
}

// executeAll runs calls sequentially in the given order, which callers keep
// sorted by stream index. One result is produced per call, matched by id.
// Cancellation is honored between calls: once ctx is done, the remaining
// tools never run and the partial results are returned as-is.
func (e *executor) executeAll(ctx context.Context, calls []completion.ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			break
		}
		results = append(results, e.execute(ctx, call))
	}
	return results
}

func (e *executor) execute(ctx context.Context, call completion.ToolCall) ToolResult {
	t, ok := e.registry.Get(call.Name)
	if !ok {
		e.logger.Warn("Model requested unregistered tool", "tool_name", call.Name)
		return errorResult(call.ID, fmt.Sprintf("Unknown function: %s", call.Name))
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errorResult(call.ID, fmt.Sprintf(
				"Tool argument decoding error: %v. Argument string: %s", err, call.Arguments))
		}
	}

	start := time.Now()
	value, err := e.safeCall(ctx, t, args)
	e.logToolCall(call.Name, time.Since(start), err)
	if err != nil {
		return errorResult(call.ID, err.Error())
	}

	return ToolResult{CallID: call.ID, Content: encodeResult(value)}
}

func (e *executor) logToolCall(name string, dur time.Duration, err error) {
	if recorder, ok := e.logger.(toolCallRecorder); ok {
		recorder.LogToolCall(name, dur, err)
		return
	}
	if err != nil {
		e.logger.Error("Tool execution failed",
			"tool_name", name, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	e.logger.Debug("Tool execution completed",
		"tool_name", name, "duration_ms", dur.Milliseconds())
}

// safeCall shields the turn from panicking tool handlers.
func (e *executor) safeCall(ctx context.Context, t tool.Tool, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &tool.ToolError{
				Tool:    t.Name(),
				Code:    tool.CodeExecution,
				Message: fmt.Sprintf("tool panicked: %v", r),
			}
		}
	}()

	return t.Call(ctx, args)
}

// errorResult builds the {"error": ...} payload with proper escaping.
func errorResult(callID, message string) ToolResult {
	payload, err := sjson.Set(`{}`, "error", message)
	if err != nil {
		payload = `{"error":"Failed to encode tool error"}`
	}
	return ToolResult{CallID: callID, Content: payload}
}

// encodeResult serializes a tool return value to a JSON string. Strings that
// already hold valid JSON pass through unchanged.
func encodeResult(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case json.RawMessage:
		return string(v)
	case string:
		if gjson.Valid(v) {
			return v
		}
		data, err := json.Marshal(v)
		if err != nil {
			return `{"error":"Failed to encode tool result"}`
		}
		return string(data)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return `{"error":"Failed to encode tool result"}`
		}
		return string(data)
	}
}
