package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/bigduu/llmbridge/providers/ai"
)

// StreamParser is the incremental decoder for Anthropic SSE events. One
// parser serves one stream. Text deltas emit immediately; a tool_use block
// accumulates its input_json_delta fragments and is released as a single
// validated ToolCalls chunk at content_block_stop.
type StreamParser struct {
	done    bool
	errored bool

	stopReason   string
	inputTokens  int
	outputTokens int

	openTool *streamToolBuilder // nil unless a tool_use block is open
}

// NewStreamParser creates a parser for one stream.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

type streamToolBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

// ParseEvent consumes one SSE frame. Anthropic names its frames, so eventType
// carries the discriminator; the JSON payload repeats it and the payload wins.
//
// Keep-alive pings, empty frames, and frames after termination return
// (nil, nil). Malformed frames move the parser to a terminal errored state
// and return *ai.StreamChunkError.
func (parser *StreamParser) ParseEvent(eventType string, data string) (*ai.LLMChunk, error) {
	if parser.done || parser.errored {
		return nil, nil
	}

	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}

	event, err := UnmarshalStreamEvent(data)
	if err != nil {
		parser.errored = true
		return nil, &ai.StreamChunkError{
			EventType: eventType,
			Data:      data,
			Reason:    "frame is not a recognized stream event",
			Err:       err,
		}
	}

	switch event.Type {

	case "message_start":
		if event.Message != nil {
			parser.inputTokens = event.Message.Usage.InputTokens
		}
		return nil, nil

	case "content_block_start":
		if event.ContentBlock == nil || event.ContentBlock.Type != "tool_use" {
			return nil, nil
		}
		if event.ContentBlock.Name == "" {
			parser.errored = true
			return nil, &ai.StreamChunkError{
				EventType: eventType,
				Reason:    "tool_use block opened without a function name",
			}
		}
		parser.openTool = &streamToolBuilder{
			id:   event.ContentBlock.ID,
			name: event.ContentBlock.Name,
		}
		// A tool_use start may carry a complete input object up front.
		if len(event.ContentBlock.Input) > 0 && string(event.ContentBlock.Input) != "{}" {
			parser.openTool.arguments.Write(event.ContentBlock.Input)
		}
		return nil, nil

	case "content_block_delta":
		if event.Delta == nil {
			return nil, nil
		}
		switch event.Delta.Type {
		case "text_delta":
			if event.Delta.Text == "" {
				return nil, nil
			}
			return ai.TokenChunk(event.Delta.Text), nil

		case "input_json_delta":
			if event.Delta.PartialJSON == "" {
				return nil, nil
			}
			if parser.openTool == nil {
				parser.errored = true
				return nil, &ai.StreamChunkError{
					EventType: eventType,
					Reason:    "input_json_delta without an open tool_use block",
				}
			}
			parser.openTool.arguments.WriteString(event.Delta.PartialJSON)
			return nil, nil

		default:
			// thinking_delta and future delta kinds carry nothing we emit.
			return nil, nil
		}

	case "content_block_stop":
		if parser.openTool == nil {
			return nil, nil
		}
		return parser.finalizeOpenTool(eventType)

	case "message_delta":
		if event.Usage != nil {
			parser.outputTokens = event.Usage.OutputTokens
		}
		if event.Delta != nil && event.Delta.StopReason != "" {
			parser.stopReason = event.Delta.StopReason
		}
		return nil, nil

	case "message_stop":
		parser.done = true
		chunk := ai.DoneChunk(mapStopReason(parser.stopReason))
		chunk.Usage = &ai.Usage{
			PromptTokens:     parser.inputTokens,
			CompletionTokens: parser.outputTokens,
			TotalTokens:      parser.inputTokens + parser.outputTokens,
		}
		return chunk, nil

	case "error":
		parser.errored = true
		message := "unknown stream error"
		if event.Error != nil {
			message = event.Error.Message
		}
		return ai.ErrorChunk(message), nil

	case "ping":
		return nil, nil

	default:
		// Unknown event types are skipped for forward-compatibility.
		return nil, nil
	}
}

// finalizeOpenTool validates the accumulated argument buffer and releases the
// call. Invalid JSON at the block boundary is a malformed stream.
func (parser *StreamParser) finalizeOpenTool(eventType string) (*ai.LLMChunk, error) {
	builder := parser.openTool
	parser.openTool = nil

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

	return ai.ToolCallsChunk(ai.ToolCall{
		ID:   builder.id,
		Type: "function",
		Function: ai.ToolCallFunction{
			Name:      builder.name,
			Arguments: arguments,
		},
	}), nil
}
