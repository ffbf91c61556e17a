package ai

import (
	"iter"
)

// ChunkKind identifies the kind of payload carried by an LLMChunk.
type ChunkKind string

const (
	// ChunkToken carries a text delta, emitted as soon as it arrives.
	ChunkToken ChunkKind = "token"
	// ChunkToolCalls carries one or more complete tool calls. Parsers hold
	// tool-call fragments until the vendor signals completion and validate
	// the argument JSON before emitting, so a ToolCalls chunk is always
	// whole and decodable.
	ChunkToolCalls ChunkKind = "tool_calls"
	// ChunkDone signals normal stream termination, with the vendor's finish
	// reason when one was reported.
	ChunkDone ChunkKind = "done"
	// ChunkError carries a provider-reported in-band error event.
	ChunkError ChunkKind = "error"
)

// LLMChunk is one normalized unit of streamed model output. Exactly one
// payload field is populated, identified by Kind.
type LLMChunk struct {
	Kind         ChunkKind  `json:"kind"`
	Token        string     `json:"token,omitempty"`         // Text delta (Kind == ChunkToken)
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`    // Complete tool calls (Kind == ChunkToolCalls)
	FinishReason string     `json:"finish_reason,omitempty"` // Present on ChunkDone
	Usage        *Usage     `json:"usage,omitempty"`         // Token usage, when the vendor reports it on the final frame
	Error        string     `json:"error,omitempty"`         // Provider error message (Kind == ChunkError)
}

// TokenChunk creates a text-delta chunk.
func TokenChunk(token string) *LLMChunk {
	return &LLMChunk{Kind: ChunkToken, Token: token}
}

// ToolCallsChunk creates a chunk carrying complete, validated tool calls.
func ToolCallsChunk(toolCalls ...ToolCall) *LLMChunk {
	return &LLMChunk{Kind: ChunkToolCalls, ToolCalls: toolCalls}
}

// DoneChunk creates a terminal chunk with the vendor's finish reason.
func DoneChunk(finishReason string) *LLMChunk {
	return &LLMChunk{Kind: ChunkDone, FinishReason: finishReason}
}

// ErrorChunk creates a chunk for a provider-reported in-band error.
func ErrorChunk(message string) *LLMChunk {
	return &LLMChunk{Kind: ChunkError, Error: message}
}

// StreamParser is the incremental transform each provider package implements.
// One parser instance serves one stream; parsers are stateful and not safe
// for concurrent use.
//
// ParseEvent consumes a single SSE frame and returns at most one chunk.
// A (nil, nil) return means the frame was administrative (keep-alive, empty
// data, frame after termination) and produced nothing. A malformed frame
// returns a *StreamChunkError and leaves the parser in a terminal errored
// state that ignores all further frames. ParseEvent never blocks and performs
// no I/O.
type StreamParser interface {
	ParseEvent(eventType string, data string) (*LLMChunk, error)
}

// ChatStream wraps a streaming iterator and provides accumulation of chunks
// into a final ChatResponse. It supports range-based iteration for real-time
// token processing and a convenience Collect() method for callers who want
// the complete response.
//
// Callers must consume the stream, either by iterating with Iter() (breaking
// out early is fine) or by calling Collect(). The underlying provider may
// hold open resources (such as an HTTP response body) that are only released
// when the iterator completes or is abandoned via a loop break.
type ChatStream struct {
	iterator iter.Seq2[LLMChunk, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator. The
// iterator yields LLMChunk values with a nil error for normal chunks, and may
// yield a non-nil error to signal a mid-stream failure.
func NewChatStream(iterator iter.Seq2[LLMChunk, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewSingleResponseStream wraps a synchronous ChatResponse as a short stream:
// one token chunk, one tool-calls chunk when calls are present, then done.
// Used as a fallback when a provider cannot stream.
func NewSingleResponseStream(response *ChatResponse) *ChatStream {
	iteratorFunc := func(yield func(LLMChunk, error) bool) {
		if response.Content != "" {
			if !yield(*TokenChunk(response.Content), nil) {
				return
			}
		}

		if len(response.ToolCalls) > 0 {
			if !yield(*ToolCallsChunk(response.ToolCalls...), nil) {
				return
			}
		}

		done := DoneChunk(response.FinishReason)
		done.Usage = response.Usage
		yield(*done, nil)
	}

	return NewChatStream(iteratorFunc)
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(chunk.Token)
//	}
func (stream *ChatStream) Iter() iter.Seq2[LLMChunk, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated
// ChatResponse: token chunks concatenate into Content, tool-calls chunks
// append to ToolCalls, and the done chunk sets FinishReason and Usage. Any
// mid-stream error terminates collection and returns the partial response
// alongside the error.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}

	for chunk, err := range stream.iterator {
		if err != nil {
			return accumulated, err
		}

		switch chunk.Kind {
		case ChunkToken:
			accumulated.Content += chunk.Token

		case ChunkToolCalls:
			accumulated.ToolCalls = append(accumulated.ToolCalls, chunk.ToolCalls...)

		case ChunkDone:
			accumulated.FinishReason = chunk.FinishReason
			if chunk.Usage != nil {
				accumulated.Usage = chunk.Usage
			}

		case ChunkError:
			// Informational; the terminating error arrives through the
			// iterator's error value.
		}
	}

	return accumulated, nil
}
