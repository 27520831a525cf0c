// Package completion talks to OpenAI-compatible chat completion endpoints:
// building wire requests from conversation snapshots, decoding server-sent
// event streams into chunks, assembling indexed tool-call fragments into
// complete calls, and recovering inline <tool_call> blocks from final text
// when a model bypasses the structured channel.
//
// The Backend interface abstracts the provider; see the anthropic subpackage
// for a non-OpenAI implementation driving the same chunk stream.
package completion
