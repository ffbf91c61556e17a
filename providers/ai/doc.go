// Package ai defines the provider-agnostic message model, the conversion
// contract, and the streaming chunk types shared by all LLM provider
// implementations (OpenAI, Anthropic, Gemini).
//
// Each provider package owns its wire format and maps it to these types, so
// conversion between any two vendors is two hops through [Message] rather
// than a dedicated pairwise translation. Streaming follows the same shape:
// provider stream parsers turn vendor SSE frames into [LLMChunk] values, and
// [ChatStream] carries them to the caller with optional [ChatStream.Collect]
// accumulation.
//
// The two central interfaces are [Provider] for synchronous chat completions
// and [StreamProvider] for SSE-based streaming responses.
package ai
