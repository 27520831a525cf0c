package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/justrach/cupertino-ink/completion"
	"github.com/justrach/cupertino-ink/conversation"
	"github.com/justrach/cupertino-ink/logging"
	"github.com/justrach/cupertino-ink/tool"
)

// Options configures an Orchestrator.
type Options struct {
	// Model identifies the model in completion requests.
	Model string

	// Backend opens model streams. Defaults to the local OpenAI-compatible
	// HTTP client.
	Backend completion.Backend

	// Extractor recovers inline tool calls from final text when no
	// structured fragments arrived. Set to nil to disable the fallback.
	Extractor completion.Extractor

	// Logger receives turn diagnostics.
	Logger logging.Logger

	// EventBufferSize is the capacity of the event channel.
	EventBufferSize int

	// MaxToolRounds caps how many tool-execution loops one turn may run
	// before it is failed. Guards against models that request tools forever.
	MaxToolRounds int
}

// Orchestrator drives one conversation: it turns a submitted user message
// into a model stream, assembles and executes tool calls, feeds results back
// for follow-up rounds, and commits every message to the log. At most one
// turn runs at a time; submitting while busy cancels the running turn first,
// and a cancelled turn commits nothing past its cancellation point.
type Orchestrator struct {
	opts     Options
	log      *conversation.Log
	registry *tool.Registry
	exec     *executor
	events   chan Event
	busy     atomic.Bool

	mu       sync.Mutex
	cancel   context.CancelFunc
	turnDone chan struct{}
}

// New creates an orchestrator bound to one conversation log and one tool
// registry.
func New(log *conversation.Log, registry *tool.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Model:           completion.DefaultModel,
		Logger:          logging.NoOpLogger{},
		EventBufferSize: 128,
		MaxToolRounds:   10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Backend == nil {
		logger := opts.Logger
		opts.Backend = completion.NewClient(func(o *completion.Options) {
			o.Logger = logger
		})
	}
	if opts.Extractor == nil {
		opts.Extractor = completion.NewTagExtractor()
	}
	if opts.EventBufferSize <= 0 {
		opts.EventBufferSize = 128
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 10
	}

	return &Orchestrator{
		opts:     opts,
		log:      log,
		registry: registry,
		exec:     newExecutor(registry, opts.Logger),
		events:   make(chan Event, opts.EventBufferSize),
	}
}

// Events returns the channel turn progress is published on. The channel is
// never closed; consumers stop reading when they are done.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Busy reports whether a turn is currently running.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Conversation returns the underlying log.
func (o *Orchestrator) Conversation() *conversation.Log {
	return o.log
}

// Submit starts a new turn for the given user text and returns its turn id.
// A running turn is cancelled first and Submit waits for it to wind down, so
// the newest message always wins. Empty input is rejected.
func (o *Orchestrator) Submit(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("orchestrator: empty message")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		<-o.turnDone
	}

	userMsg := conversation.NewTextMessage(conversation.RoleUser, trimmed)
	if err := o.log.Append(userMsg); err != nil {
		return "", err
	}

	turnID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.cancel = cancel
	o.turnDone = done
	o.busy.Store(true)

	go o.runTurn(ctx, done, turnID, userMsg)

	return turnID, nil
}

// Cancel stops the running turn, if any. It returns immediately; the turn
// winds down in the background without committing anything further.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
}

func (o *Orchestrator) runTurn(ctx context.Context, done chan struct{}, turnID string, userMsg conversation.Message) {
	defer close(done)
	defer o.busy.Store(false)

	o.emit(ctx, Event{Kind: EventTurnStarted, TurnID: turnID})
	o.emit(ctx, Event{Kind: EventMessage, TurnID: turnID, Message: &userMsg})

	for round := 0; ; round++ {
		if round > o.opts.MaxToolRounds {
			o.fail(ctx, turnID, fmt.Errorf(
				"orchestrator: turn exceeded %d tool rounds", o.opts.MaxToolRounds))
			return
		}
		if ctx.Err() != nil {
			return
		}

		schemas := completion.SchemasFromTools(o.registry.All())
		req, err := completion.NewRequest(o.opts.Model, o.log.Messages(), schemas)
		if err != nil {
			o.fail(ctx, turnID, err)
			return
		}

		stream, err := o.opts.Backend.Stream(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			o.fail(ctx, turnID, err)
			return
		}

		asm := completion.NewAssembler(o.opts.Logger)
		var draft strings.Builder

		for stream.Next(ctx) {
			chunk := stream.Chunk()
			if chunk.ContentDelta != "" {
				draft.WriteString(chunk.ContentDelta)
				o.emit(ctx, Event{Kind: EventTextDelta, TurnID: turnID, Delta: chunk.ContentDelta})
			}
			asm.Add(chunk.ToolCallDeltas)
		}
		streamErr := stream.Err()
		finish := stream.FinishReason()
		stream.Close()

		if ctx.Err() != nil {
			return
		}
		if streamErr != nil {
			o.fail(ctx, turnID, &completion.TransportError{Err: streamErr})
			return
		}

		calls := asm.Finalize()
		content := strings.TrimSpace(draft.String())

		// Fallback extraction only when the structured channel stayed
		// completely silent.
		if len(calls) == 0 && finish != completion.FinishToolCalls && !asm.Observed() && o.opts.Extractor != nil {
			if extracted := o.opts.Extractor.Extract(content); len(extracted) > 0 {
				o.opts.Logger.Info("Recovered tool calls from response text",
					"count", len(extracted))
				calls = extracted
				content = ""
				o.emit(ctx, Event{Kind: EventDraftCleared, TurnID: turnID})
			}
		}

		if len(calls) == 0 {
			if content == "" {
				if draft.Len() > 0 {
					o.emit(ctx, Event{Kind: EventDraftCleared, TurnID: turnID})
				}
			} else {
				msg := conversation.NewTextMessage(conversation.RoleAssistant, content)
				if err := o.log.Append(msg); err != nil {
					o.fail(ctx, turnID, err)
					return
				}
				o.emit(ctx, Event{Kind: EventMessage, TurnID: turnID, Message: &msg})
			}
			o.emit(ctx, Event{Kind: EventTurnFinished, TurnID: turnID})
			return
		}

		reqMsg := conversation.NewToolRequestMessage(toConversationCalls(calls))
		if err := o.log.Append(reqMsg); err != nil {
			o.fail(ctx, turnID, err)
			return
		}
		o.emit(ctx, Event{Kind: EventMessage, TurnID: turnID, Message: &reqMsg})

		results := o.exec.executeAll(ctx, calls)

		if ctx.Err() != nil {
			return
		}

		for _, result := range results {
			msg := conversation.NewToolAnswerMessage(result.CallID, result.Content)
			if err := o.log.Append(msg); err != nil {
				o.fail(ctx, turnID, err)
				return
			}
			o.emit(ctx, Event{Kind: EventMessage, TurnID: turnID, Message: &msg})
		}
	}
}

func toConversationCalls(calls []completion.ToolCall) []conversation.ToolCall {
	out := make([]conversation.ToolCall, len(calls))
	for i, call := range calls {
		out[i] = conversation.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		}
	}
	return out
}

// emit publishes an event without blocking a cancelled turn forever: when
// the consumer stalls and the turn is cancelled, the event is dropped.
func (o *Orchestrator) emit(ctx context.Context, ev Event) {
	select {
	case o.events <- ev:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) fail(ctx context.Context, turnID string, err error) {
	o.opts.Logger.Error("Turn failed", "turn_id", turnID, "error", err.Error())
	o.emit(ctx, Event{Kind: EventTurnFailed, TurnID: turnID, Err: err})
}
