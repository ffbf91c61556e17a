package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// AnthropicRequest represents the request body for Anthropic's Messages API.
// System prompts live in the top-level System field, never in Messages.
type AnthropicRequest struct {
	Model       string               `json:"model"`
	Messages    []AnthropicMessage   `json:"messages"`
	System      string               `json:"system,omitempty"`
	MaxTokens   int                  `json:"max_tokens"` // Required by Anthropic on every request
	Temperature *float64             `json:"temperature,omitempty"`
	TopP        *float64             `json:"top_p,omitempty"`
	Tools       []AnthropicTool      `json:"tools,omitempty"`
	ToolChoice  *AnthropicToolChoice `json:"tool_choice,omitempty"`
	Stream      bool                 `json:"stream,omitempty"`
}

// AnthropicMessage is one conversation turn. Content is always an array of
// typed blocks; plain text is a single text block.
type AnthropicMessage struct {
	Role    string         `json:"role"` // "user" or "assistant" on the wire
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a discriminated union via the Type field:
//   - "text": Text
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content, IsError
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`          // For tool_use
	Name      string          `json:"name,omitempty"`        // For tool_use
	Input     json.RawMessage `json:"input,omitempty"`       // For tool_use (arbitrary JSON object)
	ToolUseID string          `json:"tool_use_id,omitempty"` // For tool_result
	Content   json.RawMessage `json:"content,omitempty"`     // For tool_result (string or blocks)
	IsError   bool            `json:"is_error,omitempty"`    // For tool_result
}

// AnthropicTool describes a tool available to the model. One wire entry per
// tool, unlike Gemini's grouped container.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"` // JSON Schema for tool input
}

// AnthropicToolChoice controls which tool the model should use.
type AnthropicToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // Only for type="tool"
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES
*/

// AnthropicResponse represents the response from Anthropic's Messages API.
type AnthropicResponse struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"` // "message"
	Role         string                 `json:"role"` // "assistant"
	Content      []ResponseContentBlock `json:"content"`
	Model        string                 `json:"model"`
	StopReason   string                 `json:"stop_reason"`
	StopSequence string                 `json:"stop_sequence,omitempty"`
	Usage        AnthropicUsage         `json:"usage"`
}

// ResponseContentBlock is a content block in the response. Unknown Type
// values are skipped during conversion for forward-compatibility.
type ResponseContentBlock struct {
	Type  string          `json:"type"`            // "text", "tool_use"
	Text  string          `json:"text,omitempty"`  // For type="text"
	ID    string          `json:"id,omitempty"`    // For type="tool_use"
	Name  string          `json:"name,omitempty"`  // For type="tool_use"
	Input json.RawMessage `json:"input,omitempty"` // For type="tool_use"
}

// AnthropicUsage reports token consumption for a single request.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
