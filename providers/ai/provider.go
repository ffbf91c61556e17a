package ai

import (
	"context"
	"net/http"
)

// StreamProvider is an optional interface that providers implement to support
// SSE-based streaming responses. Callers detect streaming support via type
// assertion: provider.(StreamProvider). Providers without it fall back to the
// synchronous SendMessage method.
type StreamProvider interface {
	Provider
	// StreamMessage sends a chat request and returns a ChatStream yielding
	// normalized chunks as they arrive. Pre-stream errors (auth, bad
	// request, network) are returned directly. Mid-stream errors are
	// yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// Provider is the interface every LLM provider implementation satisfies:
// authentication, endpoint configuration, message dispatch, and response
// interpretation. Use [StreamProvider] in addition when the provider supports
// streaming.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// Returns an error if the provider call fails, the context is
	// cancelled, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response represents a terminal
	// completion, using the provider's own finish-reason semantics.
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
