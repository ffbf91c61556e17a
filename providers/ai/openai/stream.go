package openai

import (
	"encoding/json"
	"strings"

	"github.com/bigduu/llmbridge/providers/ai"
)

// doneSentinel terminates an OpenAI SSE stream.
const doneSentinel = "[DONE]"

// StreamParser is the incremental decoder for chat.completion.chunk frames.
// One parser serves one stream. Tool-call fragments accumulate per choice
// index and are only released as a single validated ToolCalls chunk when the
// vendor reports finish_reason "tool_calls"; text deltas emit immediately.
type StreamParser struct {
	done    bool
	errored bool

	finishReason string
	usage        *ai.Usage
	builders     []streamToolCallBuilder
}

// NewStreamParser creates a parser for one stream.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

type streamToolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

// errorFrame matches in-band error payloads, sent by OpenAI-compatible
// gateways instead of a chunk when the upstream call fails mid-stream.
type errorFrame struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}

// ParseEvent consumes one SSE frame. OpenAI sends bare data frames, so
// eventType is usually empty and ignored.
//
// Frames after termination, and empty or whitespace-only frames, return
// (nil, nil). A frame that is not valid JSON (other than the [DONE] sentinel)
// moves the parser to a terminal errored state and returns *ai.StreamChunkError.
func (parser *StreamParser) ParseEvent(eventType string, data string) (*ai.LLMChunk, error) {
	if parser.done || parser.errored {
		return nil, nil
	}

	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}

	if data == doneSentinel {
		parser.done = true
		chunk := ai.DoneChunk(parser.finishReason)
		chunk.Usage = parser.usage
		return chunk, nil
	}

	var probe errorFrame
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    "frame is not valid JSON",
			Err:       err,
		}
	}
	if probe.Error != nil {
		parser.errored = true
		return ai.ErrorChunk(probe.Error.Message), nil
	}

	chunk, err := UnmarshalStreamChunk(data)
	if err != nil {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    "frame does not match the chat.completion.chunk shape",
			Err:       err,
		}
	}

	if chunk.Usage != nil {
		parser.usage = &ai.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	if len(chunk.Choices) == 0 {
		return nil, nil
	}
	choice := chunk.Choices[0]

	for _, part := range choice.Delta.ToolCalls {
		if part.Index < 0 {
			parser.errored = true
			return nil, &ai.StreamChunkError{
				EventType: eventType,
				Data:      data,
				Reason:    "tool call fragment has a negative index",
			}
		}
		parser.accumulateToolCallPart(part)
	}

	// A finish frame with pending tool builders releases the batch. Each frame
	// yields at most one chunk, so a text delta riding on that same frame is
	// dropped in favor of the finalized calls.
	if choice.FinishReason != nil && *choice.FinishReason != "" {
		parser.finishReason = *choice.FinishReason
		if len(parser.builders) > 0 {
			return parser.finalizeToolCalls(eventType)
		}
	}

	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		return ai.TokenChunk(*choice.Delta.Content), nil
	}

	return nil, nil
}

func (parser *StreamParser) accumulateToolCallPart(part StreamToolCallPart) {
	for len(parser.builders) <= part.Index {
		parser.builders = append(parser.builders, streamToolCallBuilder{})
	}
	builder := &parser.builders[part.Index]

	if part.ID != "" {
		builder.id = part.ID
	}
	if part.Function.Name != "" {
		builder.name = part.Function.Name
	}
	if part.Function.Arguments != "" {
		builder.arguments.WriteString(part.Function.Arguments)
	}
}

// finalizeToolCalls validates each accumulated argument buffer and releases
// the batch as one ToolCalls chunk. Invalid JSON at the completion boundary
// is a malformed stream, never a chunk.
func (parser *StreamParser) finalizeToolCalls(eventType string) (*ai.LLMChunk, error) {
	toolCalls := make([]ai.ToolCall, 0, len(parser.builders))
	for _, builder := range parser.builders {
		arguments := builder.arguments.String()
		if arguments == "" {
			arguments = "{}"
		}
		if !json.Valid([]byte(arguments)) {
			parser.errored = true
			return nil, &ai.StreamChunkError{
				EventType: eventType,
				Reason:    "accumulated tool call arguments are not valid JSON",
				Data:      arguments,
			}
		}
		toolCalls = append(toolCalls, ai.ToolCall{
			ID:   builder.id,
			Type: "function",
			Function: ai.ToolCallFunction{
				Name:      builder.name,
				Arguments: arguments,
			},
		})
	}

	parser.builders = nil
	return ai.ToolCallsChunk(toolCalls...), nil
}
