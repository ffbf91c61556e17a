package gemini

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

// defaultBaseURL is the canonical base URL for the Gemini API.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements ai.Provider and ai.StreamProvider for Google's
// Gemini generateContent API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns a GeminiProvider initialized from GEMINI_API_KEY and
// GEMINI_API_BASE_URL, falling back to the public endpoint.
func New() *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests.
func (provider *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL overrides the API base URL. Use this when targeting a proxy or
// local testing endpoint.
func (provider *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	provider.baseURL = baseURL
	return provider
}

// WithHttpClient replaces the default http.Client used for API calls.
func (provider *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	provider.client = httpClient
	return provider
}

// buildHeaders constructs the headers required for every Gemini request.
// The credential travels in x-goog-api-key rather than a Bearer token.
func (provider *GeminiProvider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-goog-api-key", Value: provider.apiKey},
	}
}

// generateURL builds the model-addressed endpoint URL. Gemini puts the model
// in the path, not the request body.
func (provider *GeminiProvider) generateURL(model string, stream bool) string {
	if stream {
		return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", provider.baseURL, model)
	}
	return fmt.Sprintf("%s/models/%s:generateContent", provider.baseURL, model)
}

// SendMessage implements ai.Provider with a synchronous generateContent call.
func (provider *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if provider.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	geminiRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building Gemini request: %w", err)
	}

	httpResponse, response, err := utils.DoPostSync[GeminiResponse](ctx, provider.client, provider.generateURL(request.Model, false), "", geminiRequest, provider.buildHeaders()...)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	return ResponseToGeneric(*response)
}

// IsStopMessage reports whether the given chat response should be treated as
// a stop/end signal.
func (provider *GeminiProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	if message.FinishReason == "stop" || message.FinishReason == "length" || message.FinishReason == "content_filter" {
		return true
	}
	if message.Content == "" && len(message.ToolCalls) == 0 {
		return true
	}
	return false
}

// StreamMessage implements ai.StreamProvider using the streamGenerateContent
// endpoint with alt=sse.
//
// Pre-stream errors (missing API key, non-2xx response, network failure) are
// returned immediately; mid-stream errors are yielded through the iterator.
func (provider *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing streaming request",
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	if provider.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	geminiRequest, err := BuildRequest(request)
	if err != nil {
		return nil, fmt.Errorf("building Gemini request: %w", err)
	}

	httpResponse, err := utils.DoPostStream(ctx, provider.client, provider.generateURL(request.Model, true), "", geminiRequest, provider.buildHeaders()...)
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
// Gemini streams may end by connection close instead of a sentinel frame, so
// EOF asks the parser for a pending Done chunk.
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
				if chunk := parser.Finish(); chunk != nil {
					yield(*chunk, nil)
				}
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
