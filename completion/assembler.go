package completion

import (
	"sort"
	"strings"

	"github.com/justrach/cupertino-ink/logging"
)

// callBuilder accumulates the fragments of a single indexed tool call. The
// id and name are set by the first fragment that carries them; arguments
// fragments are concatenated in arrival order.
type callBuilder struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

func (b *callBuilder) apply(delta ToolCallDelta) {
	if b.id == "" && delta.ID != "" {
		b.id = delta.ID
	}
	if b.name == "" && delta.Function.Name != "" {
		b.name = delta.Function.Name
	}
	b.args.WriteString(delta.Function.Arguments)
}

// finalize returns the assembled call, or false when the stream never
// supplied an id or a name for this index.
func (b *callBuilder) finalize() (ToolCall, bool) {
	if b.id == "" || b.name == "" {
		return ToolCall{}, false
	}
	return ToolCall{
		Index:     b.index,
		ID:        b.id,
		Name:      b.name,
		Arguments: b.args.String(),
	}, true
}

// Assembler accumulates streamed tool-call fragments by index and produces
// complete calls once the stream ends.
type Assembler struct {
	logger   logging.Logger
	builders map[int]*callBuilder
	observed bool
}

// NewAssembler creates an empty assembler.
func NewAssembler(logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Assembler{
		logger:   logger,
		builders: make(map[int]*callBuilder),
	}
}

// Add folds the fragments of one chunk into the per-index builders.
func (a *Assembler) Add(deltas []ToolCallDelta) {
	for _, delta := range deltas {
		a.observed = true
		b, ok := a.builders[delta.Index]
		if !ok {
			b = &callBuilder{index: delta.Index}
			a.builders[delta.Index] = b
		}
		b.apply(delta)
	}
}

// Observed reports whether any structured fragment arrived, complete or not.
// The fallback text extractor must stay disabled when this is true.
func (a *Assembler) Observed() bool {
	return a.observed
}

// Finalize returns the complete calls in ascending index order. Builders
// that never received an id or a name are dropped with a warning.
func (a *Assembler) Finalize() []ToolCall {
	calls := make([]ToolCall, 0, len(a.builders))
	for _, b := range a.builders {
		call, ok := b.finalize()
		if !ok {
			a.logger.Warn("Dropping incomplete tool call",
				"index", b.index,
				"id", b.id,
				"name", b.name,
			)
			continue
		}
		calls = append(calls, call)
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].Index < calls[j].Index })

	return calls
}
