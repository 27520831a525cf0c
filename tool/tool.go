package tool

import (
	"context"
	"fmt"

	"github.com/justrach/cupertino-ink/internal/util"
)

// Tool is a callable capability the model can request by name. Parameters
// returns a JSON schema describing the arguments object.
type Tool interface {
	// Name returns the unique function name advertised to the model.
	Name() string

	// Description explains when the model should pick this tool.
	Description() string

	// Parameters returns the JSON schema for the arguments object.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments. The returned
	// value is serialized to JSON before it re-enters the conversation.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
)

// ToolError describes a tool failure with enough structure for callers to
// fold it into a result payload.
type ToolError struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("tool '%s' failed [%s]: %s", e.Tool, e.Code, e.Message)
}

// ValidationError is re-exported so tool authors can inspect schema failures
// without importing internal packages.
type ValidationError = util.ValidationError
