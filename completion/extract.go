package completion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/justrach/cupertino-ink/logging"
)

// Extractor recovers tool calls from final response text. It is the fallback
// for models that emit calls inline instead of through the structured
// tool-call stream.
type Extractor interface {
	Extract(text string) []ToolCall
}

// tagPattern matches <tool_call> blocks anywhere in the text, including
// across newlines. Matching is non-greedy so adjacent blocks stay separate.
var tagPattern = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)

// TagExtractor parses <tool_call>{...}</tool_call> blocks out of response
// text. Each block must hold a JSON object naming the function; arguments
// may be a JSON string or an inline object, and both the top-level and the
// OpenAI-style nested "function" layout are accepted. Extracted calls get
// synthesized ids since the model supplied none.
type TagExtractor struct {
	logger logging.Logger
}

// NewTagExtractor creates the extractor.
func NewTagExtractor(optFns ...func(o *TagExtractorOptions)) *TagExtractor {
	opts := TagExtractorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &TagExtractor{logger: opts.Logger}
}

// TagExtractorOptions configures NewTagExtractor.
type TagExtractorOptions struct {
	Logger logging.Logger
}

// Extract returns the calls found in text, in match order. Blocks that do
// not parse or lack a function name are skipped with a warning.
func (e *TagExtractor) Extract(text string) []ToolCall {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var calls []ToolCall
	for i, match := range matches {
		payload := strings.TrimSpace(match[1])
		if !gjson.Valid(payload) {
			e.logger.Warn("Skipping unparseable tool_call block", "index", i)
			continue
		}

		parsed := gjson.Parse(payload)
		if fn := parsed.Get("function"); fn.IsObject() {
			parsed = fn
		}

		name := parsed.Get("name").String()
		if name == "" {
			e.logger.Warn("Skipping tool_call block without function name", "index", i)
			continue
		}

		args := "{}"
		switch arguments := parsed.Get("arguments"); {
		case arguments.IsObject():
			args = arguments.Raw
		case arguments.Type == gjson.String:
			args = arguments.String()
		}

		calls = append(calls, ToolCall{
			Index:     len(calls),
			ID:        synthesizeCallID(i),
			Name:      name,
			Arguments: args,
		})
	}

	return calls
}

func synthesizeCallID(matchIndex int) string {
	compact := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("call_%s_parsed_%d", compact[:12], matchIndex)
}
