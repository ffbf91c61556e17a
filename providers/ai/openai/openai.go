package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bigduu/llmbridge/internal/utils"
	"github.com/bigduu/llmbridge/providers/ai"
	"github.com/bigduu/llmbridge/providers/observability"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// OpenAIProvider implements ai.Provider and ai.StreamProvider for the OpenAI
// chat completions API and compatible gateways.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider creates a provider configured from OPENAI_API_KEY and
// OPENAI_API_BASE_URL, falling back to the public endpoint.
func NewOpenAIProvider() *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIProvider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (provider *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL sets the base URL for the API.
func (provider *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	provider.baseURL = baseURL
	return provider
}

// WithHttpClient sets a custom HTTP client.
func (provider *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	provider.client = httpClient
	return provider
}

// SendMessage implements the Provider interface.
func (provider *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if provider.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	chatRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building OpenAI request: %w", err)
	}

	httpResponse, response, err := utils.DoPostSync[ChatCompletionResponse](ctx, provider.client, provider.baseURL+chatCompletionsEndpoint, provider.apiKey, chatRequest)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return ResponseToGeneric(*response)
}

// IsStopMessage reports whether the given chat response should be treated as
// a stop/end signal.
func (provider *OpenAIProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	// Prefer explicit finish reason from API
	if message.FinishReason == "stop" || message.FinishReason == "length" || message.FinishReason == "content_filter" {
		return true
	}
	// If there's no content and no tool calls, treat as stop
	if message.Content == "" && len(message.ToolCalls) == 0 {
		return true
	}
	return false
}

// StreamMessage implements ai.StreamProvider. It sends a streaming request
// with stream=true and returns a ChatStream whose iterator feeds raw SSE
// frames through a StreamParser as they arrive from the API.
func (provider *OpenAIProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "openai"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "OpenAI provider preparing streaming request",
			observability.String(observability.AttrLLMProvider, "openai"),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	if provider.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	chatRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building OpenAI request: %w", err)
	}
	streamEnabled := true
	chatRequest.Stream = &streamEnabled
	chatRequest.StreamOptions = &StreamOptions{IncludeUsage: true}

	httpResponse, err := utils.DoPostStream(ctx, provider.client, provider.baseURL+chatCompletionsEndpoint, provider.apiKey, chatRequest)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		return nil, err
	}

	return streamFromSSE(ctx, httpResponse.Body, NewStreamParser()), nil
}

// streamFromSSE wires an SSE body through a stream parser into a ChatStream.
// The body is closed when the iterator finishes or the caller breaks out.
func streamFromSSE(ctx context.Context, body io.ReadCloser, parser *StreamParser) *ai.ChatStream {
	sseScanner := utils.NewSSEScanner(body)

	iteratorFunc := func(yield func(ai.LLMChunk, error) bool) {
		defer utils.CloseWithLog(body)

		for {
			if ctx.Err() != nil {
				yield(ai.LLMChunk{}, ctx.Err())
				return
			}

			frame, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.LLMChunk{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			chunk, parseErr := parser.ParseEvent(frame.Event, frame.Data)
			if parseErr != nil {
				yield(ai.LLMChunk{}, parseErr)
				return
			}
			if chunk == nil {
				continue
			}
			if !yield(*chunk, nil) {
				return
			}
			if chunk.Kind == ai.ChunkDone {
				return
			}
		}
	}

	return ai.NewChatStream(iteratorFunc)
}
