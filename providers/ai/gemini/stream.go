package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bigduu/llmbridge/providers/ai"
)

// doneSentinel terminates some Gemini-compatible SSE streams. The native API
// usually ends by closing the connection after a finishReason frame instead.
const doneSentinel = "[DONE]"

// StreamParser is the incremental parser for Gemini streamGenerateContent
// SSE data. Each frame is a complete GeminiResponse; text arrives as that
// frame's delta and a functionCall part arrives whole in a single frame, so
// no argument buffering is needed.
//
// Tool-call ids are synthesized from a per-stream counter (gemini_0,
// gemini_1, ...) rather than the conversion-side uuid generator, keeping ids
// unique within one response even when calls share a function name.
//
// A StreamParser is single-use and not safe for concurrent use.
type StreamParser struct {
	done    bool
	errored bool

	nextToolID   int
	finishReason string
	sawToolCalls bool
	usage        *ai.Usage
}

// NewStreamParser returns a parser ready to consume one stream.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// ParseEvent consumes one SSE frame. Gemini streams carry unnamed events, so
// eventType is ignored. Returns (nil, nil) for frames that produce no chunk.
func (parser *StreamParser) ParseEvent(eventType, data string) (*ai.LLMChunk, error) {
	if parser.done || parser.errored {
		return nil, nil
	}

	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}

	if data == doneSentinel {
		return parser.doneChunk(), nil
	}

	var response GeminiResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    "malformed JSON frame",
			Err:       err,
		}
	}

	if response.Error != nil {
		parser.errored = true
		return ai.ErrorChunk(response.Error.Message), nil
	}

	if metadata := response.UsageMetadata; metadata != nil {
		parser.usage = &ai.Usage{
			PromptTokens:     metadata.PromptTokenCount,
			CompletionTokens: metadata.CandidatesTokenCount,
			TotalTokens:      metadata.TotalTokenCount,
		}
	}

	if len(response.Candidates) == 0 {
		return nil, nil
	}
	candidate := response.Candidates[0]
	if candidate.FinishReason != "" {
		parser.finishReason = candidate.FinishReason
	}

	chunk, err := parser.parseParts(eventType, data, candidate.Content.Parts)
	if err != nil {
		return nil, err
	}
	if chunk != nil {
		return chunk, nil
	}

	// A finish frame with no emittable content closes the stream; the
	// native API has no [DONE] sentinel.
	if candidate.FinishReason != "" {
		return parser.doneChunk(), nil
	}
	return nil, nil
}

// parseParts extracts the first emittable chunk from a frame's parts.
func (parser *StreamParser) parseParts(eventType, data string, parts []GeminiPart) (*ai.LLMChunk, error) {
	for _, part := range parts {
		if part.FunctionCall != nil {
			return parser.toolCallChunk(eventType, data, part.FunctionCall)
		}
		if part.Text != "" {
			return ai.TokenChunk(part.Text), nil
		}
	}
	return nil, nil
}

// toolCallChunk emits a complete tool call from a single functionCall part.
func (parser *StreamParser) toolCallChunk(eventType, data string, functionCall *GeminiFunctionCall) (*ai.LLMChunk, error) {
	if functionCall.Name == "" {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    "functionCall part without a function name",
		}
	}

	arguments := string(functionCall.Args)
	if arguments == "" {
		arguments = "{}"
	}
	if !json.Valid([]byte(arguments)) {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    fmt.Sprintf("tool call %q arguments are not valid JSON", functionCall.Name),
		}
	}

	parser.sawToolCalls = true
	chunk := ai.ToolCallsChunk(ai.ToolCall{
		ID:   "gemini_" + strconv.Itoa(parser.nextToolID),
		Type: "function",
		Function: ai.ToolCallFunction{
			Name:      functionCall.Name,
			Arguments: arguments,
		},
	})
	parser.nextToolID++
	return chunk, nil
}

// Finish returns the terminal Done chunk for a stream that ended at EOF
// after a finishReason frame whose content was already emitted. Returns nil
// when the stream already terminated or never reported a finish reason.
func (parser *StreamParser) Finish() *ai.LLMChunk {
	if parser.done || parser.errored || parser.finishReason == "" {
		return nil
	}
	return parser.doneChunk()
}

func (parser *StreamParser) doneChunk() *ai.LLMChunk {
	parser.done = true
	chunk := ai.DoneChunk(mapFinishReason(parser.finishReason, parser.sawToolCalls))
	chunk.Usage = parser.usage
	return chunk
}
