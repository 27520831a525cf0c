package mcphost

import (
	"context"

	"github.com/justrach/cupertino-ink/tool"
)

// AsTools exposes the host's cached tool specs as tool.Tool values so they
// can be registered alongside local function tools.
func (h *Host) AsTools() []tool.Tool {
	specs := h.Tools()
	out := make([]tool.Tool, len(specs))
	for i, spec := range specs {
		out[i] = &proxyTool{host: h, spec: spec}
	}
	return out
}

// proxyTool forwards calls for one advertised tool to the host.
type proxyTool struct {
	host *Host
	spec ToolSpec
}

func (t *proxyTool) Name() string { return t.spec.Name }

func (t *proxyTool) Description() string { return t.spec.Description }

func (t *proxyTool) Parameters() map[string]any {
	if len(t.spec.Schema) == 0 {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return t.spec.Schema
}

func (t *proxyTool) Call(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.host.CallTool(ctx, t.spec.Name, args)
	if err != nil {
		return nil, &tool.ToolError{
			Tool:    t.spec.Name,
			Code:    tool.CodeExecution,
			Message: err.Error(),
		}
	}
	return result, nil
}
