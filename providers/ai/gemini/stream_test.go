package gemini

import (
	"errors"
	"testing"

	"github.com/bigduu/llmbridge/providers/ai"
)

func TestStreamParser_TextFrames(t *testing.T) {
	parser := NewStreamParser()

	frames := []string{
		`{"candidates":[{"content":{"parts":[{"text":"Hel"}]}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":"lo"}]}}]}`,
		`[DONE]`,
	}

	var chunks []*ai.LLMChunk
	for i, data := range frames {
		chunk, err := parser.ParseEvent("", data)
		if err != nil {
			t.Fatalf("frame %d: ParseEvent() error = %v", i, err)
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Kind != ai.ChunkToken || chunks[0].Token != "Hel" {
		t.Errorf("chunk 0 = %+v", chunks[0])
	}
	if chunks[1].Kind != ai.ChunkToken || chunks[1].Token != "lo" {
		t.Errorf("chunk 1 = %+v", chunks[1])
	}
	if chunks[2].Kind != ai.ChunkDone {
		t.Errorf("chunk 2 = %+v", chunks[2])
	}
}

func TestStreamParser_FinishFrameWithoutContent_EmitsDone(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"text":"Hi"}]}}]}`)
	if err != nil || chunk == nil || chunk.Kind != ai.ChunkToken {
		t.Fatalf("chunk = %+v, err = %v", chunk, err)
	}

	chunk, err = parser.ParseEvent("", `{"candidates":[{"content":{"parts":[]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2,"totalTokenCount":6}}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkDone || chunk.FinishReason != "stop" {
		t.Fatalf("chunk = %+v", chunk)
	}
	if chunk.Usage == nil || chunk.Usage.TotalTokens != 6 {
		t.Errorf("Usage = %+v", chunk.Usage)
	}
}

func TestStreamParser_FinishFrameWithText_DoneDeferredToEOF(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"text":"Bye"}]},"finishReason":"STOP"}]}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkToken || chunk.Token != "Bye" {
		t.Fatalf("chunk = %+v", chunk)
	}

	done := parser.Finish()
	if done == nil || done.Kind != ai.ChunkDone || done.FinishReason != "stop" {
		t.Fatalf("Finish() = %+v", done)
	}
	if again := parser.Finish(); again != nil {
		t.Errorf("second Finish() = %+v, want nil", again)
	}
}

func TestStreamParser_Finish_NoReason_ReturnsNil(t *testing.T) {
	parser := NewStreamParser()
	if chunk := parser.Finish(); chunk != nil {
		t.Errorf("Finish() = %+v, want nil without a finish reason", chunk)
	}
}

func TestStreamParser_FunctionCall_SingleFrame(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"search","args":{"q":"test"}}}]}}]}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkToolCalls || len(chunk.ToolCalls) != 1 {
		t.Fatalf("chunk = %+v", chunk)
	}
	call := chunk.ToolCalls[0]
	if call.ID != "gemini_0" {
		t.Errorf("ID = %q, want gemini_0", call.ID)
	}
	if call.Function.Name != "search" || call.Function.Arguments != `{"q":"test"}` {
		t.Errorf("call = %+v", call)
	}
}

func TestStreamParser_FunctionCalls_CounterIDs(t *testing.T) {
	parser := NewStreamParser()

	first, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"search","args":{}}}]}}]}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	second, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"search","args":{}}}]}}]}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	if first.ToolCalls[0].ID != "gemini_0" || second.ToolCalls[0].ID != "gemini_1" {
		t.Errorf("ids = %q, %q; want gemini_0, gemini_1 even for same-name calls",
			first.ToolCalls[0].ID, second.ToolCalls[0].ID)
	}
}

func TestStreamParser_FunctionCall_EmptyArgs(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_time"}}]}}]}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk.ToolCalls[0].Function.Arguments != "{}" {
		t.Errorf("Arguments = %q, want {}", chunk.ToolCalls[0].Function.Arguments)
	}
}

func TestStreamParser_FunctionCall_MissingName_Error(t *testing.T) {
	parser := NewStreamParser()

	_, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"functionCall":{"args":{}}}]}}]}`)
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError, got %v", err)
	}

	// Terminal errored state.
	late, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`)
	if late != nil || err != nil {
		t.Errorf("expected errored parser to ignore frames, got chunk=%+v err=%v", late, err)
	}
}

func TestStreamParser_MalformedJSON_Error(t *testing.T) {
	parser := NewStreamParser()

	_, err := parser.ParseEvent("", `{"candidates":`)
	var chunkErr *ai.StreamChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected StreamChunkError, got %v", err)
	}
}

func TestStreamParser_ErrorFrame(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"error":{"code":401,"message":"API key invalid","status":"UNAUTHENTICATED"}}`)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkError || chunk.Error != "API key invalid" {
		t.Fatalf("chunk = %+v", chunk)
	}

	late, err := parser.ParseEvent("", `[DONE]`)
	if late != nil || err != nil {
		t.Errorf("expected errored parser to ignore frames, got chunk=%+v err=%v", late, err)
	}
}

func TestStreamParser_EmptyAndWhitespaceFrames_NoOp(t *testing.T) {
	parser := NewStreamParser()

	for _, data := range []string{"", "   ", "\n"} {
		chunk, err := parser.ParseEvent("", data)
		if chunk != nil || err != nil {
			t.Errorf("ParseEvent(%q) = %+v, %v; want nil, nil", data, chunk, err)
		}
	}
}

func TestStreamParser_EmptyCandidates_NoOp(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", `{"candidates":[]}`)
	if chunk != nil || err != nil {
		t.Errorf("ParseEvent() = %+v, %v; want nil, nil", chunk, err)
	}
}

func TestStreamParser_FramesAfterDone_Ignored(t *testing.T) {
	parser := NewStreamParser()

	if _, err := parser.ParseEvent("", `[DONE]`); err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	chunk, err := parser.ParseEvent("", `{"candidates":[{"content":{"parts":[{"text":"late"}]}}]}`)
	if chunk != nil || err != nil {
		t.Errorf("expected frames after [DONE] to be ignored, got chunk=%+v err=%v", chunk, err)
	}
}

func TestStreamParser_WhitespacePaddedDoneSentinel(t *testing.T) {
	parser := NewStreamParser()

	chunk, err := parser.ParseEvent("", "   [DONE]   ")
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if chunk == nil || chunk.Kind != ai.ChunkDone {
		t.Fatalf("chunk = %+v", chunk)
	}
}
