package anthropic

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
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic version-locks response formats independently of the URL.
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider implements ai.Provider and ai.StreamProvider for
// Anthropic's Messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns an AnthropicProvider initialized from ANTHROPIC_API_KEY and
// ANTHROPIC_API_BASE_URL, falling back to the public endpoint.
func New() *AnthropicProvider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &AnthropicProvider{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests.
func (provider *AnthropicProvider) WithAPIKey(apiKey string) ai.Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL overrides the API base URL. Use this when targeting a proxy or
// local testing endpoint.
func (provider *AnthropicProvider) WithBaseURL(baseURL string) ai.Provider {
	provider.baseURL = baseURL
	return provider
}

// WithHttpClient replaces the default http.Client used for API calls.
func (provider *AnthropicProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	provider.client = httpClient
	return provider
}

// buildHeaders constructs the headers required for every Anthropic request.
// x-api-key carries the credential (Anthropic does not use Bearer tokens) and
// anthropic-version pins the wire format.
func (provider *AnthropicProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: provider.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// SendMessage implements ai.Provider with a synchronous Messages API call.
func (provider *AnthropicProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if provider.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	anthropicRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building Anthropic request: %w", err)
	}

	// Empty apiKey argument keeps DoPostSync from injecting a Bearer token;
	// Anthropic authenticates via x-api-key.
	httpResponse, response, err := utils.DoPostSync[AnthropicResponse](ctx, provider.client, provider.baseURL+messagesEndpoint, "", anthropicRequest, provider.buildHeaders()...)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("empty response from Anthropic API: %s", httpResponse.Status)
	}

	return ResponseToGeneric(*response)
}

// IsStopMessage reports whether the given chat response should be treated as
// a stop/end signal.
func (provider *AnthropicProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	if message.FinishReason == "stop" || message.FinishReason == "length" {
		return true
	}
	if message.Content == "" && len(message.ToolCalls) == 0 {
		return true
	}
	return false
}

// StreamMessage implements ai.StreamProvider. It sends a streaming request
// (stream=true) and returns a ChatStream whose iterator feeds the named SSE
// events through a StreamParser.
//
// Pre-stream errors (missing API key, non-2xx response, network failure) are
// returned immediately; mid-stream errors are yielded through the iterator.
func (provider *AnthropicProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "Anthropic provider preparing streaming request",
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	if provider.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	anthropicRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building Anthropic request: %w", err)
	}
	anthropicRequest.Stream = true

	httpResponse, err := utils.DoPostStream(ctx, provider.client, provider.baseURL+messagesEndpoint, "", anthropicRequest, provider.buildHeaders()...)
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
