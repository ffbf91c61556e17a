// Package openai implements the OpenAI chat completions wire format: message
// conversion to and from the internal model, the SSE stream parser for
// chat.completion.chunk frames, and a thin HTTP client.
//
// The wire types are exported because they are the vendor contract; anything
// OpenAI-compatible (OpenRouter, local inference servers) speaks the same
// schema through this package.
package openai
