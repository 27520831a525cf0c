// Package mcphost connects to Model Context Protocol servers over stdio and
// exposes their tools to the conversation engine. Each Host owns one server
// process: it launches the command, performs the MCP handshake, caches the
// advertised tool list, and proxies tool calls.
package mcphost

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/justrach/cupertino-ink/logging"
)

// ServerConfig describes how to launch an MCP server process.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ToolSpec is one tool advertised by a connected server.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

// HostOptions configures a Host.
type HostOptions struct {
	Logger logging.Logger
}

// Host manages a single stdio MCP server connection.
type Host struct {
	name   string
	config ServerConfig
	logger logging.Logger

	mu      sync.RWMutex
	client  *mcp.Client
	session *mcp.ClientSession
	tools   []ToolSpec
	running bool
}

// NewHost creates a host for the named server. Nothing is launched until
// Start is called.
func NewHost(name string, config ServerConfig, optFns ...func(o *HostOptions)) *Host {
	opts := HostOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Host{
		name:   name,
		config: config,
		logger: opts.Logger,
	}
}

// Name returns the server name.
func (h *Host) Name() string {
	return h.name
}

// Start launches the server process, completes the handshake and caches the
// tool list. Starting an already running host is a no-op.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.client = mcp.NewClient(&mcp.Implementation{
		Name:    "cupertino-ink",
		Version: "1.0.0",
	}, nil)

	cmd := exec.CommandContext(ctx, h.config.Command, h.config.Args...)
	if len(h.config.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range h.config.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	transport := &mcp.CommandTransport{Command: cmd}
	session, err := h.client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("mcphost: server %q: connect: %w", h.name, err)
	}
	h.session = session

	if err := h.loadTools(ctx); err != nil {
		h.session.Close()
		h.session = nil
		return fmt.Errorf("mcphost: server %q: list tools: %w", h.name, err)
	}

	h.running = true
	h.logger.Info("MCP server connected", "server", h.name, "tools", len(h.tools))

	return nil
}

// Stop closes the session, terminating the server process.
func (h *Host) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	var err error
	if h.session != nil {
		err = h.session.Close()
		h.session = nil
	}
	h.running = false
	h.tools = nil

	return err
}

// IsRunning reports whether the host is connected.
func (h *Host) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.running
}

// Tools returns the cached tool specs from the connected server.
func (h *Host) Tools() []ToolSpec {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ToolSpec, len(h.tools))
	copy(out, h.tools)

	return out
}

func (h *Host) loadTools(ctx context.Context) error {
	result, err := h.session.ListTools(ctx, nil)
	if err != nil {
		return err
	}

	h.tools = make([]ToolSpec, 0, len(result.Tools))
	for _, t := range result.Tools {
		schema := make(map[string]any)
		if t.InputSchema != nil {
			if m, ok := t.InputSchema.(map[string]any); ok {
				schema = m
			}
		}
		h.tools = append(h.tools, ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Schema:      schema,
		})
	}

	return nil
}

// CallTool invokes a tool on the server and flattens the result content to
// text. A result flagged IsError comes back as a Go error.
func (h *Host) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	h.mu.RLock()
	session := h.session
	running := h.running
	h.mu.RUnlock()

	if !running || session == nil {
		return "", fmt.Errorf("mcphost: server %q is not running", h.name)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("mcphost: server %q: call %s: %w", h.name, name, err)
	}

	if result.IsError {
		return "", fmt.Errorf("mcphost: tool %s failed: %s", name, flattenContent(result.Content))
	}

	return flattenContent(result.Content), nil
}

// flattenContent joins MCP content blocks into one string. Text blocks are
// used verbatim; anything else is JSON encoded.
func flattenContent(content []mcp.Content) string {
	var out strings.Builder
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			out.WriteString(v.Text)
		default:
			if data, err := json.Marshal(c); err == nil {
				out.Write(data)
			}
		}
	}
	return out.String()
}
