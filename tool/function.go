package tool

import (
	"context"
	"errors"

	"github.com/justrach/cupertino-ink/internal/util"
)

// HandlerFunc is the Go function a FunctionTool wraps.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool adapts a plain Go function into a Tool. Arguments are
// validated against the parameter schema before the handler runs, and
// handler errors are normalized into ToolError values.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	handler     HandlerFunc
}

// NewFunctionTool creates a tool from an explicit JSON schema.
func NewFunctionTool(name, description string, parameters map[string]any, handler HandlerFunc) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		handler:     handler,
	}
}

// NewFunctionToolFromStruct creates a tool whose schema is derived from a
// struct type via reflection (json and description tags).
func NewFunctionToolFromStruct(name, description string, paramStruct any, handler HandlerFunc) *FunctionTool {
	return NewFunctionTool(name, description, util.SchemaFromStruct(paramStruct), handler)
}

// Name returns the function name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the tool description.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema for the arguments object.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the schema and invokes the handler.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Code:    CodeValidation,
			Message: err.Error(),
			Details: args,
		}
	}

	result, err := t.handler(ctx, args)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &ToolError{
			Tool:    t.name,
			Code:    CodeExecution,
			Message: err.Error(),
		}
	}

	return result, nil
}
