package observability

// Semantic conventions for observability attributes. These constants define
// standard attribute names so that spans and log lines emitted by different
// components stay queryable together.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g. "openai", "anthropic").
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g. "gpt-4o", "claude-sonnet-4").
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL.
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider.
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished.
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMStreaming indicates whether the request used the streaming endpoint.
	AttrLLMStreaming = "llm.streaming"
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request.
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestToolsCount is the number of tools in the request.
	AttrRequestToolsCount = "request.tools_count"

	// AttrStreamChunksCount is the number of normalized chunks emitted for a stream.
	AttrStreamChunksCount = "stream.chunks_count"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, ...).
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	// AttrError is the error message.
	AttrError = "error"
)

// --- Span Event Names ---

const (
	// EventLLMRequestStart marks the beginning of an LLM request.
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request.
	EventLLMRequestEnd = "llm.request.end"

	// EventLLMStreamEnd marks the end of an LLM response stream.
	EventLLMStreamEnd = "llm.stream.end"
)
