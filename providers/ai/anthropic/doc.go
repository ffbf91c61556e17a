// Package anthropic implements the Anthropic Messages API wire format:
// content-block message conversion, out-of-band system prompt extraction, the
// SSE stream parser for the message_start/content_block_delta/message_stop
// event lifecycle, and a thin HTTP client.
package anthropic
