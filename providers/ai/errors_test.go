package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrors_MatchWithErrorsAs(t *testing.T) {
	t.Run("InvalidRoleError", func(t *testing.T) {
		wrapped := fmt.Errorf("converting message: %w", &InvalidRoleError{Role: "developer"})
		var roleErr *InvalidRoleError
		if !errors.As(wrapped, &roleErr) {
			t.Fatal("errors.As failed to match InvalidRoleError")
		}
		if roleErr.Role != "developer" {
			t.Errorf("Role = %q", roleErr.Role)
		}
	})

	t.Run("MissingFieldError", func(t *testing.T) {
		err := error(&MissingFieldError{Field: "tool_call_id", Reason: "required for tool results"})
		var fieldErr *MissingFieldError
		if !errors.As(err, &fieldErr) {
			t.Fatal("errors.As failed to match MissingFieldError")
		}
		if !strings.Contains(err.Error(), "tool_call_id") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("SerializationError wraps cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := error(&SerializationError{Context: "tool call arguments", Err: cause})
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the wrapped cause")
		}
	})

	t.Run("UnsupportedFeatureError", func(t *testing.T) {
		err := error(&UnsupportedFeatureError{Feature: "audio content", Vendor: "gemini"})
		var featErr *UnsupportedFeatureError
		if !errors.As(err, &featErr) {
			t.Fatal("errors.As failed to match UnsupportedFeatureError")
		}
		if featErr.Vendor != "gemini" {
			t.Errorf("Vendor = %q", featErr.Vendor)
		}
	})

	t.Run("StreamChunkError wraps cause", func(t *testing.T) {
		cause := errors.New("invalid character 'x'")
		err := error(&StreamChunkError{EventType: "content_block_stop", Reason: "tool arguments are not valid JSON", Err: cause})
		var chunkErr *StreamChunkError
		if !errors.As(err, &chunkErr) {
			t.Fatal("errors.As failed to match StreamChunkError")
		}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the wrapped cause")
		}
		if !strings.Contains(err.Error(), "content_block_stop") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
