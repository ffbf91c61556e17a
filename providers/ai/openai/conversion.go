package openai

import (
	"encoding/json"
	"fmt"

	"github.com/bigduu/llmbridge/providers/ai"
)

// Converter maps between the internal message model and the chat completions
// wire format. OpenAI is the closest vendor to the internal model, so both
// directions are near-structural: roles keep their labels, system messages
// stay inline, and tool calls/results keep their ids.
type Converter struct{}

var _ ai.Converter[ChatMessage] = Converter{}

// ToProvider converts an internal message to a ChatMessage.
func (Converter) ToProvider(message ai.Message) (ChatMessage, error) {
	if !message.Role.Valid() {
		return ChatMessage{}, &ai.InvalidRoleError{Role: string(message.Role)}
	}

	chatMessage := ChatMessage{
		Role:    string(message.Role),
		Content: message.Content,
	}

	if message.Role == ai.RoleTool {
		if message.ToolCallID == "" {
			return ChatMessage{}, &ai.MissingFieldError{
				Field:  "tool_call_id",
				Reason: "OpenAI correlates tool results by call id",
			}
		}
		chatMessage.ToolCallID = message.ToolCallID
		chatMessage.Name = message.Name
	}

	for _, toolCall := range message.ToolCalls {
		wireCall, err := toolCallToWire(toolCall)
		if err != nil {
			return ChatMessage{}, err
		}
		chatMessage.ToolCalls = append(chatMessage.ToolCalls, wireCall)
	}

	return chatMessage, nil
}

// FromProvider converts a ChatMessage to the internal model.
func (Converter) FromProvider(chatMessage ChatMessage) (ai.Message, error) {
	role := ai.MessageRole(chatMessage.Role)
	if !role.Valid() {
		return ai.Message{}, &ai.InvalidRoleError{Role: chatMessage.Role}
	}

	message := ai.Message{
		Role:       role,
		Content:    chatMessage.Content,
		ToolCallID: chatMessage.ToolCallID,
		Name:       chatMessage.Name,
	}

	for _, wireCall := range chatMessage.ToolCalls {
		toolCall, err := toolCallFromWire(wireCall)
		if err != nil {
			return ai.Message{}, err
		}
		message.ToolCalls = append(message.ToolCalls, toolCall)
	}

	return message, nil
}

func toolCallToWire(toolCall ai.ToolCall) (ChatToolCall, error) {
	if toolCall.Function.Name == "" {
		return ChatToolCall{}, &ai.MissingFieldError{Field: "function.name"}
	}
	arguments, err := normalizeArguments(toolCall.Function.Arguments)
	if err != nil {
		return ChatToolCall{}, err
	}

	wireCall := ChatToolCall{
		ID:   toolCall.ID,
		Type: "function",
	}
	wireCall.Function.Name = toolCall.Function.Name
	wireCall.Function.Arguments = arguments
	return wireCall, nil
}

func toolCallFromWire(wireCall ChatToolCall) (ai.ToolCall, error) {
	if wireCall.Function.Name == "" {
		return ai.ToolCall{}, &ai.MissingFieldError{Field: "function.name"}
	}
	arguments, err := normalizeArguments(wireCall.Function.Arguments)
	if err != nil {
		return ai.ToolCall{}, err
	}

	return ai.ToolCall{
		ID:   wireCall.ID,
		Type: "function",
		Function: ai.ToolCallFunction{
			Name:      wireCall.Function.Name,
			Arguments: arguments,
		},
	}, nil
}

// normalizeArguments guarantees the tool-call arguments invariant: always
// valid JSON text. Empty arguments become the empty object.
func normalizeArguments(arguments string) (string, error) {
	if arguments == "" {
		return "{}", nil
	}
	if !json.Valid([]byte(arguments)) {
		return "", &ai.SerializationError{
			Context: "tool call arguments",
			Err:     fmt.Errorf("not valid JSON: %q", arguments),
		}
	}
	return arguments, nil
}

// BuildRequest assembles a full chat completions request envelope. The system
// prompt is prepended inline as the first message; tool declarations map one
// wire entry per tool.
func BuildRequest(request ai.ChatRequest) (ChatCompletionRequest, error) {
	chatRequest := ChatCompletionRequest{
		Model: request.Model,
	}

	if request.SystemPrompt != "" {
		chatRequest.Messages = append(chatRequest.Messages, ChatMessage{
			Role:    string(ai.RoleSystem),
			Content: request.SystemPrompt,
		})
	}

	converted, err := ai.ConvertMessages[ChatMessage](Converter{}, request.Messages)
	if err != nil {
		return ChatCompletionRequest{}, err
	}
	chatRequest.Messages = append(chatRequest.Messages, converted...)

	for _, tool := range request.Tools {
		chatRequest.Tools = append(chatRequest.Tools, ChatTool{
			Type: "function",
			Function: ChatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if len(chatRequest.Tools) > 0 {
		chatRequest.ToolChoice = "auto"
	}

	if config := request.GenerationConfig; config != nil {
		if config.Temperature > 0 {
			temperature := float64(config.Temperature)
			chatRequest.Temperature = &temperature
		}
		if config.TopP > 0 {
			topP := float64(config.TopP)
			chatRequest.TopP = &topP
		}
		if config.MaxTokens > 0 {
			maxTokens := config.MaxTokens
			chatRequest.MaxTokens = &maxTokens
		}
	}

	return chatRequest, nil
}

// ResponseToGeneric converts a completed chat completions response to the
// internal response type. Only the first choice is consumed.
func ResponseToGeneric(response ChatCompletionResponse) (*ai.ChatResponse, error) {
	chatResponse := &ai.ChatResponse{
		Id:    response.ID,
		Model: response.Model,
	}

	if response.Usage != nil {
		chatResponse.Usage = &ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}
	}

	if len(response.Choices) == 0 {
		return chatResponse, nil
	}

	choice := response.Choices[0]
	chatResponse.Content = choice.Message.Content
	chatResponse.FinishReason = choice.FinishReason

	for _, wireCall := range choice.Message.ToolCalls {
		toolCall, err := toolCallFromWire(wireCall)
		if err != nil {
			return nil, err
		}
		chatResponse.ToolCalls = append(chatResponse.ToolCalls, toolCall)
	}

	return chatResponse, nil
}
