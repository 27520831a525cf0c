package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justrach/cupertino-ink/internal/util"
)

// LogOptions configures construction of a Log.
type LogOptions struct {
	// ID overrides the generated log id.
	ID string

	// TemplateState is merged into the system prompt template. The key
	// currentDateTime is always provided.
	TemplateState map[string]any

	// Now supplies timestamps, for tests.
	Now func() time.Time
}

// Log is an append-only, thread-safe conversation transcript. The first
// message is always the rendered system prompt; every later append is
// validated against the role/body pairing rules before it is committed.
type Log struct {
	mu       sync.RWMutex
	id       string
	messages []Message
	created  time.Time
	updated  time.Time
}

// NewLog creates a log seeded with the system prompt. The prompt may contain
// template variables (for example {{.currentDateTime}}) which are rendered
// once, at session start.
func NewLog(systemPrompt string, optFns ...func(o *LogOptions)) (*Log, error) {
	opts := LogOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}

	state := map[string]any{
		"currentDateTime": opts.Now().Format("Monday, January 2, 2006 at 3:04 PM"),
	}
	for k, v := range opts.TemplateState {
		state[k] = v
	}

	rendered, err := util.RenderTemplate(systemPrompt, state)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := opts.Now()
	system := Message{
		ID:        uuid.NewString(),
		Role:      RoleSystem,
		Body:      Text{Text: rendered},
		Timestamp: now,
	}

	return &Log{
		id:       id,
		messages: []Message{system},
		created:  now,
		updated:  now,
	}, nil
}

// ID returns the log identifier.
func (l *Log) ID() string {
	return l.id
}

// Append validates and commits a message. It returns an error when the
// role/body pairing is invalid or, for tool answers, when the call id does
// not belong to the pending assistant tool request.
func (l *Log) Append(msg Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validate(msg); err != nil {
		return err
	}

	l.messages = append(l.messages, msg)
	l.updated = time.Now()

	return nil
}

func (l *Log) validate(msg Message) error {
	switch msg.Role {
	case RoleSystem:
		return fmt.Errorf("conversation: system message only allowed as the seed")
	case RoleUser:
		if _, ok := msg.Body.(Text); !ok {
			return fmt.Errorf("conversation: user message must carry text, got %T", msg.Body)
		}
	case RoleAssistant:
		switch msg.Body.(type) {
		case Text, ToolRequest:
		default:
			return fmt.Errorf("conversation: assistant message must carry text or a tool request, got %T", msg.Body)
		}
	case RoleTool:
		answer, ok := msg.Body.(ToolAnswer)
		if !ok {
			return fmt.Errorf("conversation: tool message must carry a tool answer, got %T", msg.Body)
		}
		if !l.pendingCall(answer.CallID) {
			return fmt.Errorf("conversation: tool answer references unknown call id %q", answer.CallID)
		}
	default:
		return fmt.Errorf("conversation: unknown role %q", msg.Role)
	}

	return nil
}

// pendingCall reports whether callID belongs to the assistant tool request
// this answer group responds to. Earlier answers of the same group may sit
// between the request and the new answer, so the scan skips over them.
func (l *Log) pendingCall(callID string) bool {
	for i := len(l.messages) - 1; i >= 0; i-- {
		msg := l.messages[i]
		if msg.Role == RoleTool {
			continue
		}
		for _, call := range msg.ToolCalls() {
			if call.ID == callID {
				return true
			}
		}
		return false
	}
	return false
}

// Messages returns a snapshot of the transcript.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)

	return out
}

// Len returns the number of messages including the system seed.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.messages)
}

// Last returns the most recent message.
func (l *Log) Last() Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.messages[len(l.messages)-1]
}

// CreatedAt returns the log creation time.
func (l *Log) CreatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.created
}

// UpdatedAt returns the time of the last committed append.
func (l *Log) UpdatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.updated
}
