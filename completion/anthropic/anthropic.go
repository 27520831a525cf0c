// Package anthropic adapts the Anthropic Messages API to the completion
// Backend interface so the turn loop can run against Claude models without
// changes. The non-streaming response is replayed as a short synthetic chunk
// stream carrying the same deltas an OpenAI-compatible endpoint would send.
package anthropic

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/justrach/cupertino-ink/completion"
)

// Options configures the adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend implements completion.Backend over the Anthropic Messages API.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// NewBackend creates a backend using the official client.
func NewBackend(optFns ...func(o *Options)) *Backend {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Backend{client: &client, opts: opts}
}

// NewBackendFromClient creates a backend from an existing client.
func NewBackendFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Backend{client: client, opts: opts}
}

// Stream issues the request and returns the response replayed as chunks.
// API failures surface as completion.TransportError.
func (b *Backend) Stream(ctx context.Context, req completion.Request) (completion.Stream, error) {
	params := anthropic.MessageNewParams{
		Model:       b.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   b.opts.MaxTokens,
		Temperature: anthropic.Float(b.opts.Temperature),
	}

	if system := systemBlocks(req.Messages); len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &completion.TransportError{Err: err}
	}

	return newReplayStream(resp), nil
}

// buildMessages converts wire messages into Anthropic message params.
// Consecutive tool results are batched into a single user message, which is
// where the Messages API expects them.
func buildMessages(messages []completion.WireMessage) []anthropic.MessageParam {
	var (
		out         []anthropic.MessageParam
		toolResults []anthropic.ContentBlockParamUnion
	)

	flushResults := func() {
		if len(toolResults) > 0 {
			out = append(out, anthropic.NewUserMessage(toolResults...))
			toolResults = nil
		}
	}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			continue

		case "tool":
			content := ""
			if msg.Content != nil {
				content = *msg.Content
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(msg.ToolCallID, content, false))

		case "assistant":
			flushResults()
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != nil && *msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(*msg.Content))
			}
			for _, call := range msg.ToolCalls {
				var input any
				if call.Function.Arguments != "" {
					if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
						input = call.Function.Arguments
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Function.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}

		default:
			flushResults()
			if msg.Content != nil && *msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(*msg.Content)))
			}
		}
	}
	flushResults()

	return out
}

func systemBlocks(messages []completion.WireMessage) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == "system" && msg.Content != nil && *msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: *msg.Content})
		}
	}
	return blocks
}

func buildTools(tools []completion.ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := t.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				schema.Properties = properties
			}
			switch required := params["required"].(type) {
			case []string:
				schema.Required = required
			case []any:
				for _, r := range required {
					if s, ok := r.(string); ok {
						schema.Required = append(schema.Required, s)
					}
				}
			}
		}
		union := anthropic.ToolUnionParamOfTool(schema, t.Function.Name)
		if t.Function.Description != "" {
			union.OfTool.Description = anthropic.String(t.Function.Description)
		}
		out[i] = union
	}
	return out
}

// replayStream walks a finished message as if it had streamed: one chunk per
// content block, then a final chunk carrying the finish reason.
type replayStream struct {
	chunks []completion.StreamChunk
	pos    int
	chunk  completion.StreamChunk
	finish string
	err    error
}

func newReplayStream(resp *anthropic.Message) *replayStream {
	var (
		chunks    []completion.StreamChunk
		toolIndex int
	)

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if text := block.AsText().Text; text != "" {
				chunks = append(chunks, completion.StreamChunk{ContentDelta: text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(raw)
				}
			}
			chunks = append(chunks, completion.StreamChunk{
				ToolCallDeltas: []completion.ToolCallDelta{{
					Index: toolIndex,
					ID:    toolBlock.ID,
					Type:  "function",
					Function: completion.FunctionDelta{
						Name:      toolBlock.Name,
						Arguments: args,
					},
				}},
			})
			toolIndex++
		}
	}

	finish := completion.FinishStop
	if resp.StopReason == "tool_use" {
		finish = completion.FinishToolCalls
	}
	chunks = append(chunks, completion.StreamChunk{FinishReason: finish})

	return &replayStream{chunks: chunks, finish: finish}
}

// Next advances to the next replayed chunk.
func (s *replayStream) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos >= len(s.chunks) {
		return false
	}
	s.chunk = s.chunks[s.pos]
	s.pos++
	return true
}

// Chunk returns the chunk produced by the last Next.
func (s *replayStream) Chunk() completion.StreamChunk { return s.chunk }

// FinishReason returns the mapped stop reason.
func (s *replayStream) FinishReason() string { return s.finish }

// Err returns the cancellation error, if any. Transport failures happen
// before the stream exists.
func (s *replayStream) Err() error { return s.err }

// Close is a no-op.
func (s *replayStream) Close() error { return nil }
