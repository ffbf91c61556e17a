package ai

import (
	"github.com/bigduu/llmbridge/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat conversation to a provider.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // All conversation messages except the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt, delivered per vendor convention
	Tools            []ToolDescription `json:"tools,omitempty"`             // Tool definitions offered to the model
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// ToolDescription declares a tool the model may call: a name, a human-readable
// description, and a JSON Schema for the arguments object.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message represents a single message in a conversation. Conversions between
// this type and vendor wire formats always produce new values; a Message is
// never mutated in place.
type Message struct {
	// Core fields (always present)
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being responded to
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that generated this response

	// TODO support content types different than text in the future (images, audio, etc.)
}

// GenerationConfig carries sampling parameters passed through to the vendor.
type GenerationConfig struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`  // Optional max tokens for the response
	Temperature float32 `json:"temperature,omitempty"` // Sampling temperature. Higher => more random; lower => more deterministic.
	TopP        float32 `json:"top_p,omitempty"`       // Nucleus (top-p) sampling [0..1]. Alternative to temperature.
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token consumption for a single completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	Id           string     `json:"id"`
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`
}

/*
	##### TOOL CALLING #####
*/

// ToolCall represents a function/tool call request from the LLM. Arguments are
// carried as a raw JSON string; callers decode them against the tool's schema.
type ToolCall struct {
	ID       string           `json:"id,omitempty"` // Unique identifier for this tool call
	Type     string           `json:"type"`         // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)

// Valid reports whether the role is one of the four canonical roles.
func (role MessageRole) Valid() bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

/*
	##### CONSTRUCTORS #####
*/

// User creates a user message with the given text content.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant creates an assistant message with the given text content.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// System creates a system message. Converters deliver it per vendor
// convention: inline for OpenAI-style APIs, out of band for Anthropic and
// Gemini.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// ToolResult creates a tool message correlated by tool name only. Gemini
// correlates tool results by function name and carries no call id, so this is
// the portable constructor for results that must round-trip through any
// vendor.
func ToolResult(name string, content string) Message {
	return Message{Role: RoleTool, Name: name, Content: content}
}

// ToolResultForCall creates a tool message correlated by call id. OpenAI and
// Anthropic require the originating call id on tool results; the name is kept
// alongside so the same message still converts to Gemini.
func ToolResultForCall(toolCallID string, name string, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Name: name, Content: content}
}
