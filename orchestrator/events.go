package orchestrator

import "github.com/justrach/cupertino-ink/conversation"

// EventKind discriminates orchestrator events.
type EventKind string

const (
	// EventTurnStarted opens a turn after the user message is committed.
	EventTurnStarted EventKind = "turn_started"

	// EventTextDelta carries one streamed text fragment of the draft reply.
	EventTextDelta EventKind = "text_delta"

	// EventMessage announces a message committed to the log during the turn
	// (assistant replies, tool requests, tool answers).
	EventMessage EventKind = "message"

	// EventDraftCleared tells the presenter to discard accumulated deltas:
	// the drafted text was consumed by fallback extraction or ended empty.
	EventDraftCleared EventKind = "draft_cleared"

	// EventTurnFinished closes a successful turn.
	EventTurnFinished EventKind = "turn_finished"

	// EventTurnFailed closes a failed turn; Err holds the visible error.
	EventTurnFailed EventKind = "turn_failed"
)

// Event is one observation of turn progress, consumed by the presentation
// layer. Fields beyond Kind and TurnID are set per kind: Delta for text
// deltas, Message for commits, Err for failures.
type Event struct {
	Kind    EventKind
	TurnID  string
	Delta   string
	Message *conversation.Message
	Err     error
}
