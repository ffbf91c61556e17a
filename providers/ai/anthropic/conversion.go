package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bigduu/llmbridge/providers/ai"
)

// defaultMaxTokens is applied when the caller supplies no limit; Anthropic
// rejects requests without max_tokens.
const defaultMaxTokens = 4096

// Converter maps between the internal message model and Anthropic's
// content-block format. Tool calls become tool_use blocks on assistant turns;
// tool results become tool_result blocks wrapped in a user turn, correlated
// by tool_use_id.
//
// System messages convert with their role intact so a round trip is lossless,
// but they never appear in a built request: BuildRequest extracts them into
// the top-level system field before converting the remainder.
type Converter struct{}

var _ ai.Converter[AnthropicMessage] = Converter{}

// ToProvider converts an internal message to an AnthropicMessage.
func (Converter) ToProvider(message ai.Message) (AnthropicMessage, error) {
	switch message.Role {
	case ai.RoleUser:
		return AnthropicMessage{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: message.Content}},
		}, nil

	case ai.RoleSystem:
		return AnthropicMessage{
			Role:    "system",
			Content: []ContentBlock{{Type: "text", Text: message.Content}},
		}, nil

	case ai.RoleAssistant:
		assistantMessage := AnthropicMessage{Role: "assistant"}
		if message.Content != "" {
			assistantMessage.Content = append(assistantMessage.Content, ContentBlock{
				Type: "text",
				Text: message.Content,
			})
		}
		for _, toolCall := range message.ToolCalls {
			block, err := toolUseBlock(toolCall)
			if err != nil {
				return AnthropicMessage{}, err
			}
			assistantMessage.Content = append(assistantMessage.Content, block)
		}
		if len(assistantMessage.Content) == 0 {
			assistantMessage.Content = []ContentBlock{{Type: "text", Text: ""}}
		}
		return assistantMessage, nil

	case ai.RoleTool:
		if message.ToolCallID == "" {
			return AnthropicMessage{}, &ai.MissingFieldError{
				Field:  "tool_call_id",
				Reason: "Anthropic correlates tool results by tool_use_id",
			}
		}
		content, err := json.Marshal(message.Content)
		if err != nil {
			return AnthropicMessage{}, &ai.SerializationError{Context: "tool result content", Err: err}
		}
		return AnthropicMessage{
			Role: "user",
			Content: []ContentBlock{{
				Type:      "tool_result",
				ToolUseID: message.ToolCallID,
				Content:   content,
			}},
		}, nil

	default:
		return AnthropicMessage{}, &ai.InvalidRoleError{Role: string(message.Role)}
	}
}

// FromProvider converts an AnthropicMessage to the internal model. A user
// turn consisting of a single tool_result block becomes a tool message; the
// internal model holds one result per message, so a turn with multiple
// tool_result blocks is rejected. Any other turn joins its text blocks.
func (Converter) FromProvider(anthropicMessage AnthropicMessage) (ai.Message, error) {
	switch anthropicMessage.Role {
	case "system":
		return ai.System(joinTextBlocks(anthropicMessage.Content)), nil

	case "user":
		if len(anthropicMessage.Content) > 0 && allToolResults(anthropicMessage.Content) {
			if len(anthropicMessage.Content) > 1 {
				return ai.Message{}, &ai.UnsupportedFeatureError{
					Feature: "multiple tool_result blocks in one message",
					Vendor:  "the internal message model",
				}
			}
			block := anthropicMessage.Content[0]
			if block.ToolUseID == "" {
				return ai.Message{}, &ai.MissingFieldError{Field: "tool_use_id"}
			}
			return ai.Message{
				Role:       ai.RoleTool,
				ToolCallID: block.ToolUseID,
				Content:    toolResultText(block.Content),
			}, nil
		}
		return ai.User(joinTextBlocks(anthropicMessage.Content)), nil

	case "assistant":
		message := ai.Message{
			Role:    ai.RoleAssistant,
			Content: joinTextBlocks(anthropicMessage.Content),
		}
		for _, block := range anthropicMessage.Content {
			if block.Type != "tool_use" {
				continue
			}
			if block.Name == "" {
				return ai.Message{}, &ai.MissingFieldError{Field: "name", Reason: "tool_use block without a function name"}
			}
			arguments := string(block.Input)
			if arguments == "" {
				arguments = "{}"
			}
			message.ToolCalls = append(message.ToolCalls, ai.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      block.Name,
					Arguments: arguments,
				},
			})
		}
		return message, nil

	default:
		return ai.Message{}, &ai.InvalidRoleError{Role: anthropicMessage.Role}
	}
}

func toolUseBlock(toolCall ai.ToolCall) (ContentBlock, error) {
	if toolCall.Function.Name == "" {
		return ContentBlock{}, &ai.MissingFieldError{Field: "function.name"}
	}
	arguments := toolCall.Function.Arguments
	if arguments == "" {
		arguments = "{}"
	}
	if !json.Valid([]byte(arguments)) {
		return ContentBlock{}, &ai.SerializationError{
			Context: "tool call arguments",
			Err:     fmt.Errorf("not valid JSON: %q", arguments),
		}
	}
	return ContentBlock{
		Type:  "tool_use",
		ID:    toolCall.ID,
		Name:  toolCall.Function.Name,
		Input: json.RawMessage(arguments),
	}, nil
}

func joinTextBlocks(blocks []ContentBlock) string {
	var texts []string
	for _, block := range blocks {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "")
}

func allToolResults(blocks []ContentBlock) bool {
	for _, block := range blocks {
		if block.Type != "tool_result" {
			return false
		}
	}
	return true
}

// toolResultText unwraps a tool_result content value: JSON strings lose their
// quoting, anything else stays as raw JSON text.
func toolResultText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

// BuildRequest assembles a Messages API request envelope. System messages are
// extracted out of the message list into the top-level system field, joined
// with the request-level system prompt when both are present.
func BuildRequest(request ai.ChatRequest) (AnthropicRequest, error) {
	anthropicRequest := AnthropicRequest{
		Model:     request.Model,
		MaxTokens: defaultMaxTokens,
	}

	var systemParts []string
	if request.SystemPrompt != "" {
		systemParts = append(systemParts, request.SystemPrompt)
	}

	converter := Converter{}
	for _, message := range request.Messages {
		if message.Role == ai.RoleSystem {
			systemParts = append(systemParts, message.Content)
			continue
		}
		converted, err := converter.ToProvider(message)
		if err != nil {
			return AnthropicRequest{}, err
		}
		anthropicRequest.Messages = append(anthropicRequest.Messages, converted)
	}
	anthropicRequest.System = strings.Join(systemParts, "\n\n")

	for _, tool := range request.Tools {
		inputSchema := json.RawMessage(`{"type":"object","properties":{}}`)
		if tool.Parameters != nil {
			schemaBytes, err := json.Marshal(tool.Parameters)
			if err != nil {
				return AnthropicRequest{}, &ai.SerializationError{Context: "tool input schema", Err: err}
			}
			inputSchema = schemaBytes
		}
		anthropicRequest.Tools = append(anthropicRequest.Tools, AnthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchema,
		})
	}
	if len(anthropicRequest.Tools) > 0 {
		anthropicRequest.ToolChoice = &AnthropicToolChoice{Type: "auto"}
	}

	if config := request.GenerationConfig; config != nil {
		if config.Temperature > 0 {
			temperature := float64(config.Temperature)
			anthropicRequest.Temperature = &temperature
		}
		if config.TopP > 0 {
			topP := float64(config.TopP)
			anthropicRequest.TopP = &topP
		}
		if config.MaxTokens > 0 {
			anthropicRequest.MaxTokens = config.MaxTokens
		}
	}

	return anthropicRequest, nil
}

// ResponseToGeneric converts a Messages API response to the internal
// response type. Text blocks concatenate into Content; tool_use blocks become
// tool calls; unknown block types are skipped.
func ResponseToGeneric(response AnthropicResponse) (*ai.ChatResponse, error) {
	chatResponse := &ai.ChatResponse{
		Id:           response.ID,
		Model:        response.Model,
		FinishReason: mapStopReason(response.StopReason),
		Usage: &ai.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
			TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
		},
	}

	var textParts []string
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)

		case "tool_use":
			if block.Name == "" {
				return nil, &ai.MissingFieldError{Field: "name", Reason: "tool_use block without a function name"}
			}
			arguments := string(block.Input)
			if arguments == "" {
				arguments = "{}"
			}
			chatResponse.ToolCalls = append(chatResponse.ToolCalls, ai.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      block.Name,
					Arguments: arguments,
				},
			})
		}
	}
	chatResponse.Content = strings.Join(textParts, "")

	return chatResponse, nil
}

// mapStopReason converts an Anthropic stop_reason value to the canonical
// finish_reason vocabulary.
func mapStopReason(stopReason string) string {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "tool_use":
		return "tool_calls"
	case "max_tokens":
		return "length"
	case "":
		return ""
	default:
		return "stop"
	}
}
