package openai

import (
	"encoding/json"

	"github.com/bigduu/llmbridge/internal/jsonschema"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// ChatCompletionRequest represents the /v1/chat/completions request format.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      *bool         `json:"stream,omitempty"`

	// Tool calling
	Tools      []ChatTool  `json:"tools,omitempty"`
	ToolChoice interface{} `json:"tool_choice,omitempty"` // "auto", "none", "required", or object

	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

// ChatMessage is one message on the chat completions wire. System messages
// stay inline in the messages array; tool results use role "tool" with
// ToolCallID linking back to the originating call.
type ChatMessage struct {
	Role       string         `json:"role"`              // system, user, assistant, tool
	Content    string         `json:"content,omitempty"` // May be empty for pure tool-call turns
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`   // For role=assistant
}

type ChatTool struct {
	Type     string       `json:"type"` // "function"
	Function ChatFunction `json:"function"`
}

type ChatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type ChatToolCall struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"` // "function"
	Function ChatToolCallFunction `json:"function"`
}

type ChatToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string, never a parsed object
}

// StreamOptions configures streaming behavior in the request.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *ChatUsage   `json:"usage,omitempty"`
}

type ChatChoice struct {
	Index        int                 `json:"index"`
	Message      ChatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type ChatResponseMessage struct {
	Role      string         `json:"role"` // "assistant"
	Content   string         `json:"content,omitempty"`
	ToolCalls []ChatToolCall `json:"tool_calls,omitempty"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CHAT COMPLETIONS STREAMING API - RESPONSE TYPES

	These types model the SSE chunks returned when stream=true. Each chunk
	carries incremental deltas for content, tool calls, and optionally usage
	metadata on the final chunk (when stream_options.include_usage is set).
*/

// ChatCompletionStreamChunk represents a single SSE frame from the streaming
// chat completions endpoint.
type ChatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"` // "chat.completion.chunk"
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
	Usage   *ChatUsage     `json:"usage,omitempty"` // Final chunk only, when include_usage is set
}

// StreamChoice uses Delta instead of Message; FinishReason stays nil until
// the final chunk for the choice.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// StreamDelta carries the incremental content of one frame. All fields are
// optional; a frame may carry only content, only tool-call fragments, only a
// role, etc.
type StreamDelta struct {
	Role      string               `json:"role,omitempty"`
	Content   *string              `json:"content,omitempty"` // Nullable to distinguish empty string from absent
	ToolCalls []StreamToolCallPart `json:"tool_calls,omitempty"`
}

// StreamToolCallPart is an incremental tool-call fragment. The first fragment
// for a call carries the ID and function name; later fragments carry only
// argument text, correlated by Index.
type StreamToolCallPart struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// UnmarshalStreamChunk parses a raw SSE data payload into a stream chunk.
func UnmarshalStreamChunk(data string) (*ChatCompletionStreamChunk, error) {
	var chunk ChatCompletionStreamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}
