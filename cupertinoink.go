// Package cupertinoink is the top-level entry point: a small façade that
// owns the conversation store and the tool registry and opens per-chat
// orchestrators wired with the configured model backend.
package cupertinoink

import (
	"github.com/justrach/cupertino-ink/completion"
	"github.com/justrach/cupertino-ink/conversation"
	"github.com/justrach/cupertino-ink/logging"
	"github.com/justrach/cupertino-ink/orchestrator"
	"github.com/justrach/cupertino-ink/tool"
)

// DefaultSystemPrompt seeds new conversations. The current date and time is
// rendered in when the conversation is created.
const DefaultSystemPrompt = "You are a helpful assistant. " +
	"Use the supplied tools to look up information when asked. " +
	"The current date and time is {{.currentDateTime}}."

// Options configures the App.
type Options struct {
	// SystemPrompt seeds every new conversation. Template variables are
	// rendered at conversation creation.
	SystemPrompt string

	// Model identifies the model in completion requests.
	Model string

	// Backend opens model streams for every conversation. Defaults to the
	// local OpenAI-compatible HTTP client.
	Backend completion.Backend

	// Logger receives diagnostics from all components.
	Logger logging.Logger

	// MaxToolRounds caps tool-execution loops per turn.
	MaxToolRounds int
}

// App bundles the shared state of a chat host: one tool registry and a
// store of independent conversations.
type App struct {
	opts     Options
	store    *conversation.Store
	registry *tool.Registry
}

// New creates an App.
func New(optFns ...func(o *Options)) *App {
	opts := Options{
		SystemPrompt: DefaultSystemPrompt,
		Model:        completion.DefaultModel,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &App{
		opts:     opts,
		store:    conversation.NewStore(),
		registry: tool.NewRegistry(),
	}
}

// RegisterTools adds tools to the shared registry. Registration stops at the
// first duplicate name.
func (a *App) RegisterTools(tools ...tool.Tool) error {
	for _, t := range tools {
		if err := a.registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the shared tool registry.
func (a *App) Registry() *tool.Registry {
	return a.registry
}

// Store returns the conversation store.
func (a *App) Store() *conversation.Store {
	return a.store
}

// OpenConversation creates a new conversation seeded with the system prompt
// and returns an orchestrator bound to it.
func (a *App) OpenConversation(optFns ...func(o *conversation.LogOptions)) (*orchestrator.Orchestrator, error) {
	log, err := a.store.Create(a.opts.SystemPrompt, optFns...)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(log, a.registry, func(o *orchestrator.Options) {
		o.Model = a.opts.Model
		o.Backend = a.opts.Backend
		o.Logger = a.opts.Logger
		o.MaxToolRounds = a.opts.MaxToolRounds
	})

	return orch, nil
}
