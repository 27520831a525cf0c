package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/openai/openai-go/packages/ssestream"

	"github.com/justrach/cupertino-ink/logging"
)

// doneSentinel terminates the stream regardless of what the server sends
// afterwards.
var doneSentinel = []byte("[DONE]")

// Decoder turns a server-sent event response into StreamChunks. Malformed
// event payloads are logged and skipped rather than failing the stream, and
// only the first choice of each chunk is surfaced. The finish reason is
// sticky: once a non-empty value is seen it never changes.
type Decoder struct {
	events ssestream.Decoder
	logger logging.Logger

	chunk  StreamChunk
	finish string
	done   bool
	err    error
}

// NewDecoder wraps a streaming HTTP response. The decoder owns the response
// body and releases it on Close.
func NewDecoder(res *http.Response, logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Decoder{
		events: ssestream.NewDecoder(res),
		logger: logger,
	}
}

// Next advances to the next chunk. It returns false when the stream is
// exhausted, the terminal sentinel arrives, ctx is cancelled, or the
// underlying transport fails. Check Err to tell failure from completion.
func (d *Decoder) Next(ctx context.Context) bool {
	if d.done || d.err != nil {
		return false
	}

	for {
		if err := ctx.Err(); err != nil {
			d.err = err
			return false
		}

		if !d.events.Next() {
			d.done = true
			d.err = d.events.Err()
			return false
		}

		data := bytes.TrimSpace(d.events.Event().Data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, doneSentinel) {
			d.done = true
			return false
		}

		var payload sseChunk
		if err := json.Unmarshal(data, &payload); err != nil {
			d.logger.Warn("Skipping malformed stream event", "error", err.Error())
			continue
		}
		if len(payload.Choices) == 0 {
			continue
		}

		choice := payload.Choices[0]
		chunk := StreamChunk{
			ToolCallDeltas: choice.Delta.ToolCalls,
		}
		if choice.Delta.Content != nil {
			chunk.ContentDelta = *choice.Delta.Content
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			if d.finish == "" {
				d.finish = *choice.FinishReason
			}
			chunk.FinishReason = d.finish
		}

		d.chunk = chunk
		return true
	}
}

// Chunk returns the chunk produced by the last successful Next.
func (d *Decoder) Chunk() StreamChunk {
	return d.chunk
}

// FinishReason returns the sticky finish reason, or empty if the stream
// ended without one.
func (d *Decoder) FinishReason() string {
	return d.finish
}

// Err returns the terminal error, nil after a clean end of stream.
func (d *Decoder) Err() error {
	return d.err
}

// Close releases the underlying response body.
func (d *Decoder) Close() error {
	return d.events.Close()
}
