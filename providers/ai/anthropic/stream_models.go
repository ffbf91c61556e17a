package anthropic

import (
	"encoding/json"
	"fmt"
)

/*
	ANTHROPIC SSE STREAMING - WIRE TYPES

	Anthropic streaming uses named SSE events ("event:" lines) with JSON data
	payloads. The payload repeats the discriminator in its "type" field, so the
	parser works from the payload alone and treats the SSE event name as a
	cross-check.

	Event lifecycle:
	  message_start → content_block_start → content_block_delta(s) →
	  content_block_stop → message_delta → message_stop
*/

// StreamEvent is the top-level envelope for all Anthropic SSE events. The
// Type field discriminates which optional fields are populated.
type StreamEvent struct {
	Type         string                `json:"type"`
	Message      *AnthropicResponse    `json:"message,omitempty"`       // For "message_start"
	Index        int                   `json:"index,omitempty"`         // For content_block_start/delta/stop
	ContentBlock *ResponseContentBlock `json:"content_block,omitempty"` // For "content_block_start"
	Delta        *StreamEventDelta     `json:"delta,omitempty"`         // For "content_block_delta" and "message_delta"
	Usage        *AnthropicUsage       `json:"usage,omitempty"`         // For "message_delta"
	Error        *StreamError          `json:"error,omitempty"`         // For "error" events
}

// StreamEventDelta carries incremental content within a content_block_delta
// or message_delta event. The Type field discriminates:
//   - "text_delta": Text
//   - "thinking_delta": Thinking
//   - "input_json_delta": PartialJSON (tool call argument fragment)
//   - (no type, on message_delta): StopReason
type StreamEventDelta struct {
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	Thinking    string `json:"thinking,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
}

// StreamError is an in-band error event payload.
type StreamError struct {
	Type    string `json:"type"`    // e.g. "overloaded_error", "api_error"
	Message string `json:"message"` // Human-readable description
}

// UnmarshalStreamEvent parses a JSON payload into a StreamEvent. Fails when
// the JSON is invalid or the type discriminator is missing.
func UnmarshalStreamEvent(payload string) (*StreamEvent, error) {
	var event StreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, fmt.Errorf("missing type field in stream event")
	}
	return &event, nil
}
