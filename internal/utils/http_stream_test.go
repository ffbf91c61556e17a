package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---- SSEScanner tests -------------------------------------------------------

func TestSSEScanner_SingleEvent_ReturnsSingleFrame(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: hello\n\n"))

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Data != "hello" {
		t.Errorf("expected data %q, got %q", "hello", frame.Data)
	}
	if frame.Event != "" {
		t.Errorf("expected empty event name, got %q", frame.Event)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestSSEScanner_MultipleEvents_ReturnsInOrder(t *testing.T) {
	input := "data: first\n\ndata: second\n\ndata: third\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	for _, expected := range []string{"first", "second", "third"} {
		frame, err := scanner.Next()
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if frame.Data != expected {
			t.Errorf("expected %q, got %q", expected, frame.Data)
		}
	}

	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestSSEScanner_NamedEvents_CarryEventName(t *testing.T) {
	input := "event: message_start\ndata: {\"type\":\"message_start\"}\n\n" +
		"event: ping\ndata: {\"type\":\"ping\"}\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Event != "message_start" {
		t.Errorf("expected event %q, got %q", "message_start", frame.Event)
	}

	frame, err = scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Event != "ping" {
		t.Errorf("expected event %q, got %q", "ping", frame.Event)
	}
}

func TestSSEScanner_EventNameDoesNotLeakAcrossFrames(t *testing.T) {
	input := "event: delta\ndata: a\n\ndata: b\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	frame, _ := scanner.Next()
	if frame.Event != "delta" {
		t.Fatalf("expected event %q, got %q", "delta", frame.Event)
	}

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Event != "" {
		t.Errorf("expected empty event on second frame, got %q", frame.Event)
	}
	if frame.Data != "b" {
		t.Errorf("expected data %q, got %q", "b", frame.Data)
	}
}

func TestSSEScanner_MultiLineData_JoinedWithNewline(t *testing.T) {
	input := "data: line one\ndata: line two\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Data != "line one\nline two" {
		t.Errorf("expected joined data, got %q", frame.Data)
	}
}

func TestSSEScanner_Comments_Skipped(t *testing.T) {
	input := ": keep-alive\ndata: payload\n: another comment\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if frame.Data != "payload" {
		t.Errorf("expected %q, got %q", "payload", frame.Data)
	}
}

func TestSSEScanner_DoneSentinel_DeliveredVerbatim(t *testing.T) {
	input := "data: {\"x\":1}\n\ndata: [DONE]\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	if _, err := scanner.Next(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected [DONE] frame, got error %v", err)
	}
	if frame.Data != "[DONE]" {
		t.Errorf("expected %q, got %q", "[DONE]", frame.Data)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after [DONE], got %v", err)
	}
}

func TestSSEScanner_TrailingFrameWithoutBlankLine_Flushed(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: tail"))

	frame, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected trailing frame, got error %v", err)
	}
	if frame.Data != "tail" {
		t.Errorf("expected %q, got %q", "tail", frame.Data)
	}

	if _, err = scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestSSEScanner_EmptyStream_ReturnsEOF(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader(""))
	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF for empty stream, got %v", err)
	}
}

func TestSSEScanner_OversizedLine_ReturnsError(t *testing.T) {
	long := "data: " + strings.Repeat("x", maxSSELineSize+1) + "\n\n"
	scanner := NewSSEScanner(strings.NewReader(long))

	_, err := scanner.Next()
	if err == nil {
		t.Fatal("expected error for oversized line")
	}
	if err == io.EOF {
		t.Fatal("expected scanner error, got io.EOF")
	}
}

// ---- DoPostStream tests -----------------------------------------------------

func TestDoPostStream_Success_BodyLeftOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected Accept: text/event-stream, got %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: chunk\n\n")
	}))
	defer server.Close()

	resp, err := DoPostStream(context.Background(), server.Client(), server.URL, "test-key", map[string]string{"q": "hi"})
	if err != nil {
		t.Fatalf("DoPostStream() error = %v", err)
	}
	defer CloseWithLog(resp.Body)

	frame, err := NewSSEScanner(resp.Body).Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if frame.Data != "chunk" {
		t.Errorf("expected %q, got %q", "chunk", frame.Data)
	}
}

func TestDoPostStream_Non2xx_ReturnsErrorWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "", nil)
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected error body in error, got %v", err)
	}
}

func TestDoPostStream_ExtraHeaders_Applied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("expected x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
		}
		fmt.Fprint(w, "data: ok\n\n")
	}))
	defer server.Close()

	resp, err := DoPostStream(context.Background(), server.Client(), server.URL, "", nil,
		HeaderOption{Key: "x-api-key", Value: "secret"})
	if err != nil {
		t.Fatalf("DoPostStream() error = %v", err)
	}
	CloseWithLog(resp.Body)
}

func TestDoPostStream_UnmarshalableBody_ReturnsError(t *testing.T) {
	_, err := DoPostStream(context.Background(), http.DefaultClient, "http://localhost", "", make(chan int))
	if err == nil {
		t.Fatal("expected marshal error")
	}
	if !strings.Contains(err.Error(), "marshaling") {
		t.Errorf("expected marshal error, got %v", err)
	}
}
