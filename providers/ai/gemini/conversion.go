package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bigduu/llmbridge/internal/utils"
	"github.com/bigduu/llmbridge/providers/ai"
)

// Converter maps between the internal message model and Gemini's
// contents/parts format. The assistant role becomes "model", tool calls
// become functionCall parts, and tool results become functionResponse parts
// on a user turn, correlated by function name because Gemini has no call ids.
//
// Inbound functionCall parts carry no id either, so the converter fabricates
// one. NewToolCallID is the generator, injectable so tests can pin it; the
// fabricated id is only stable within a single conversion, never across two
// conversions of the same wire message.
type Converter struct {
	NewToolCallID func() string
}

var _ ai.Converter[GeminiContent] = Converter{}

// NewConverter returns a Converter with the default uuid-backed id generator.
func NewConverter() Converter {
	return Converter{
		NewToolCallID: func() string {
			return "gemini_" + uuid.NewString()
		},
	}
}

// ToProvider converts an internal message to a GeminiContent. Gemini rejects
// turns with an empty parts array, so an empty message still produces a
// single empty text part.
func (Converter) ToProvider(message ai.Message) (GeminiContent, error) {
	switch message.Role {
	case ai.RoleUser:
		return GeminiContent{
			Role:  "user",
			Parts: []GeminiPart{{Text: message.Content}},
		}, nil

	case ai.RoleSystem:
		return GeminiContent{
			Role:  "system",
			Parts: []GeminiPart{{Text: message.Content}},
		}, nil

	case ai.RoleAssistant:
		content := GeminiContent{Role: "model"}
		if message.Content != "" {
			content.Parts = append(content.Parts, GeminiPart{Text: message.Content})
		}
		for _, toolCall := range message.ToolCalls {
			part, err := functionCallPart(toolCall)
			if err != nil {
				return GeminiContent{}, err
			}
			content.Parts = append(content.Parts, part)
		}
		if len(content.Parts) == 0 {
			content.Parts = []GeminiPart{{Text: ""}}
		}
		return content, nil

	case ai.RoleTool:
		name := message.Name
		if name == "" {
			return GeminiContent{}, &ai.MissingFieldError{
				Field:  "name",
				Reason: "Gemini correlates tool results by function name",
			}
		}
		return GeminiContent{
			Role: "user",
			Parts: []GeminiPart{{
				FunctionResponse: &GeminiFunctionResponse{
					Name:     name,
					Response: toolResultValue(message.Content),
				},
			}},
		}, nil

	default:
		return GeminiContent{}, &ai.InvalidRoleError{Role: string(message.Role)}
	}
}

// FromProvider converts a GeminiContent to the internal model. A user turn
// carrying a functionResponse part becomes a tool message; text parts join;
// functionCall parts become tool calls with synthesized ids.
func (converter Converter) FromProvider(content GeminiContent) (ai.Message, error) {
	var role ai.MessageRole
	switch content.Role {
	case "user":
		role = ai.RoleUser
	case "model":
		role = ai.RoleAssistant
	case "system":
		role = ai.RoleSystem
	default:
		return ai.Message{}, &ai.InvalidRoleError{Role: content.Role}
	}

	message := ai.Message{Role: role}

	var textParts []string
	for _, part := range content.Parts {
		if part.FunctionResponse != nil {
			return ai.Message{
				Role:    ai.RoleTool,
				Name:    part.FunctionResponse.Name,
				Content: toolResultText(part.FunctionResponse.Response),
			}, nil
		}

		if part.FunctionCall != nil {
			if part.FunctionCall.Name == "" {
				return ai.Message{}, &ai.MissingFieldError{Field: "name", Reason: "functionCall part without a function name"}
			}
			arguments := string(part.FunctionCall.Args)
			if arguments == "" {
				arguments = "{}"
			}
			message.ToolCalls = append(message.ToolCalls, ai.ToolCall{
				ID:   converter.newToolCallID(),
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      part.FunctionCall.Name,
					Arguments: arguments,
				},
			})
			continue
		}

		textParts = append(textParts, part.Text)
	}
	message.Content = strings.Join(textParts, "")

	return message, nil
}

func (converter Converter) newToolCallID() string {
	if converter.NewToolCallID != nil {
		return converter.NewToolCallID()
	}
	return "gemini_" + uuid.NewString()
}

func functionCallPart(toolCall ai.ToolCall) (GeminiPart, error) {
	if toolCall.Function.Name == "" {
		return GeminiPart{}, &ai.MissingFieldError{Field: "function.name"}
	}
	arguments := toolCall.Function.Arguments
	if arguments == "" {
		arguments = "{}"
	}
	if !json.Valid([]byte(arguments)) {
		return GeminiPart{}, &ai.SerializationError{
			Context: "tool call arguments",
			Err:     fmt.Errorf("not valid JSON: %q", arguments),
		}
	}
	return GeminiPart{
		FunctionCall: &GeminiFunctionCall{
			Name: toolCall.Function.Name,
			Args: json.RawMessage(arguments),
		},
	}, nil
}

// toolResultValue turns tool output into the JSON value a functionResponse
// carries. Valid JSON passes through, almost-JSON gets repaired, and plain
// text falls back to a JSON string.
func toolResultValue(content string) json.RawMessage {
	if json.Valid([]byte(content)) && strings.TrimSpace(content) != "" {
		return json.RawMessage(content)
	}
	if repaired, err := utils.RepairJSON(content); err == nil {
		return json.RawMessage(repaired)
	}
	quoted, err := json.Marshal(content)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return quoted
}

// toolResultText unwraps a functionResponse value: JSON strings lose their
// quoting, anything else stays as raw JSON text.
func toolResultText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

// BuildRequest assembles a generateContent request envelope. System messages
// are extracted out of the message list into systemInstruction, joined with
// the request-level system prompt when both are present, and all tool
// declarations are grouped into a single tool entry.
func BuildRequest(request ai.ChatRequest) (GeminiRequest, error) {
	geminiRequest := GeminiRequest{}

	var systemParts []string
	if request.SystemPrompt != "" {
		systemParts = append(systemParts, request.SystemPrompt)
	}

	converter := NewConverter()
	for _, message := range request.Messages {
		if message.Role == ai.RoleSystem {
			systemParts = append(systemParts, message.Content)
			continue
		}
		converted, err := converter.ToProvider(message)
		if err != nil {
			return GeminiRequest{}, err
		}
		geminiRequest.Contents = append(geminiRequest.Contents, converted)
	}
	if len(systemParts) > 0 {
		geminiRequest.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	if len(request.Tools) > 0 {
		declarations := make([]GeminiFunctionDeclaration, 0, len(request.Tools))
		for _, tool := range request.Tools {
			declarations = append(declarations, GeminiFunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		geminiRequest.Tools = []GeminiTool{{FunctionDeclarations: declarations}}
	}

	if config := request.GenerationConfig; config != nil {
		generationConfig := &GeminiGenerationConfig{}
		if config.Temperature > 0 {
			generationConfig.Temperature = utils.Ptr(float64(config.Temperature))
		}
		if config.TopP > 0 {
			generationConfig.TopP = utils.Ptr(float64(config.TopP))
		}
		if config.MaxTokens > 0 {
			generationConfig.MaxOutputTokens = utils.Ptr(config.MaxTokens)
		}
		geminiRequest.GenerationConfig = generationConfig
	}

	return geminiRequest, nil
}

// ParseTools expands grouped Gemini tool entries back into individual tool
// descriptions, preserving declaration order. Grouping is structural, not
// lossy, so ParseTools(BuildRequest(r).Tools) recovers r.Tools.
func ParseTools(tools []GeminiTool) []ai.ToolDescription {
	var descriptions []ai.ToolDescription
	for _, tool := range tools {
		for _, declaration := range tool.FunctionDeclarations {
			descriptions = append(descriptions, ai.ToolDescription{
				Name:        declaration.Name,
				Description: declaration.Description,
				Parameters:  declaration.Parameters,
			})
		}
	}
	return descriptions
}

// ResponseToGeneric converts a generateContent response to the internal
// response type. Only the first candidate is considered.
func ResponseToGeneric(response GeminiResponse) (*ai.ChatResponse, error) {
	if response.Error != nil {
		return nil, fmt.Errorf("Gemini API error %d: %s", response.Error.Code, response.Error.Message)
	}
	if len(response.Candidates) == 0 {
		return nil, fmt.Errorf("Gemini response contains no candidates")
	}

	candidate := response.Candidates[0]
	message, err := NewConverter().FromProvider(candidate.Content)
	if err != nil {
		return nil, err
	}

	chatResponse := &ai.ChatResponse{
		Id:           response.ResponseID,
		Model:        response.ModelVersion,
		Content:      message.Content,
		ToolCalls:    message.ToolCalls,
		FinishReason: mapFinishReason(candidate.FinishReason, len(message.ToolCalls) > 0),
	}
	if metadata := response.UsageMetadata; metadata != nil {
		chatResponse.Usage = &ai.Usage{
			PromptTokens:     metadata.PromptTokenCount,
			CompletionTokens: metadata.CandidatesTokenCount,
			TotalTokens:      metadata.TotalTokenCount,
		}
	}

	return chatResponse, nil
}

// mapFinishReason converts a Gemini finishReason value to the canonical
// finish reason vocabulary. A STOP that produced tool calls reports as
// tool_calls, since Gemini has no dedicated reason for them.
func mapFinishReason(finishReason string, hasToolCalls bool) string {
	switch finishReason {
	case "STOP":
		if hasToolCalls {
			return "tool_calls"
		}
		return "stop"
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return "content_filter"
	case "":
		return ""
	default:
		return "stop"
	}
}
