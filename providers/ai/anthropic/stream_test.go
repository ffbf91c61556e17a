package anthropic

import (
	"errors"
	"testing"

	"github.com/bigduu/llmbridge/providers/ai"
)

func parseAll(t *testing.T, parser *StreamParser, frames [][2]string) []*ai.LLMChunk {
	t.Helper()
	var chunks []*ai.LLMChunk
	for i, frame := range frames {
		chunk, err := parser.ParseEvent(frame[0], frame[1])
		if err != nil {
			t.Fatalf("frame %d (%s): ParseEvent() error = %v", i, frame[0], err)
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func TestStreamParser_TextLifecycle(t *testing.T) {
	parser := NewStreamParser()

	frames := [][2]string{
		{"message_start", `{"type":"message_start","message":{"id":"msg_01","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-5","usage":{"input_tokens":10,"output_tokens":0}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}

	chunks := parseAll(t, parser, frames)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Kind != ai.ChunkToken || chunks[0].Token != "Hel" {
		t.Errorf("chunk 0 = %+v", chunks[0])
	}
	if chunks[1].Kind != ai.ChunkToken || chunks[1].Token != "lo" {
		t.Errorf("chunk 1 = %+v", chunks[1])
	}
	done := chunks[2]
	if done.Kind != ai.ChunkDone || done.FinishReason != "stop" {
		t.Errorf("done chunk = %+v", done)
	}
	if done.Usage == nil || done.Usage.PromptTokens != 10 || done.Usage.CompletionTokens != 5 || done.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v", done.Usage)
	}
}

func TestStreamParser_ToolCallAtomicity(t *testing.T) {
	parser := NewStreamParser()

	frames := [][2]string{
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_01","name":"get_weather","input":{}}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"location\":"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"Paris\"}"}}`},
	}

	if chunks := parseAll(t, parser, frames); len(chunks) != 0 {
		t.Fatalf("expected no chunks before content_block_stop, got %+v", chunks)
	}

	chunk, err := parser.ParseEvent("content_block_stop", `{"type":"content_block_stop","index":0}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkToolCalls || len(chunk.ToolCalls) != 1 {
		t.Fatalf("expected one tool calls chunk, got %+v", chunk)
	}
	call := chunk.ToolCalls[0]
	if call.ID != "toolu_01" || call.Function.Name != "get_weather" {
		t.Errorf("call = %+v", call)
	}
	if call.Function.Arguments != `{"location":"Paris"}` {
		t.Errorf("Arguments = %q, want concatenated fragments", call.Function.Arguments)
	}
}

func TestStreamParser_MalformedToolArguments_Error(t *testing.T) {
	parser := NewStreamParser()

	parseAll(t, parser, [][2]string{
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_01","name":"f"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"broken"}}`},
	})

	chunk, err := parser.ParseEvent("content_block_stop", `{"type":"content_block_stop","index":0}`)
	if chunk != nil {
		t.Fatalf("expected no chunk for invalid JSON, got %+v", chunk)
	}
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError, got %v", err)
	}

	// Terminal errored state.
	late, err := parser.ParseEvent("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"x"}}`)
	if late != nil || err != nil {
		t.Errorf("expected errored parser to ignore frames, got chunk=%+v err=%v", late, err)
	}
}

func TestStreamParser_OrphanArgumentFragment_Error(t *testing.T) {
	parser := NewStreamParser()

	_, err := parser.ParseEvent("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{}"}}`)
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError for fragment without open block, got %v", err)
	}
}

func TestStreamParser_ErrorEvent(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("error", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkError || chunk.Error != "Overloaded" {
		t.Fatalf("chunk = %+v", chunk)
	}

	// The parser is terminal after an in-band error.
	late, err := parser.ParseEvent("message_stop", `{"type":"message_stop"}`)
	if late != nil || err != nil {
		t.Errorf("expected errored parser to ignore frames, got chunk=%+v err=%v", late, err)
	}
}

func TestStreamParser_WhitespaceFrames_NoOp(t *testing.T) {
	parser := NewStreamParser()

	for _, data := range []string{"", "  ", "\n"} {
		chunk, err := parser.ParseEvent("", data)
		if chunk != nil || err != nil {
			t.Errorf("ParseEvent(%q) = %+v, %v; want nil, nil", data, chunk, err)
		}
	}
}

func TestStreamParser_MalformedJSON_Error(t *testing.T) {
	parser := NewStreamParser()

	_, err := parser.ParseEvent("content_block_delta", `{"type":`)
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError, got %v", err)
	}
}

func TestStreamParser_MissingTypeField_Error(t *testing.T) {
	parser := NewStreamParser()

	_, err := parser.ParseEvent("", `{"index":0}`)
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError, got %v", err)
	}
}

func TestStreamParser_FramesAfterMessageStop_Ignored(t *testing.T) {
	parser := NewStreamParser()

	if _, err := parser.ParseEvent("message_stop", `{"type":"message_stop"}`); err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	chunk, err := parser.ParseEvent("content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"late"}}`)
	if chunk != nil || err != nil {
		t.Errorf("expected frames after message_stop to be ignored, got chunk=%+v err=%v", chunk, err)
	}
}

func TestStreamParser_UnknownEventType_Skipped(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("content_block_heartbeat", `{"type":"content_block_heartbeat"}`)
	if chunk != nil || err != nil {
		t.Errorf("unknown event should be skipped, got chunk=%+v err=%v", chunk, err)
	}
}
