package utils

import (
	"strings"
	"testing"
)

func TestJSONToString(t *testing.T) {
	t.Run("compact", func(t *testing.T) {
		got := JSONToString(map[string]int{"a": 1})
		if got != `{"a":1}` {
			t.Errorf("JSONToString() = %q", got)
		}
	})

	t.Run("indented", func(t *testing.T) {
		got := JSONToString(map[string]int{"a": 1}, true)
		if got != "{\n  \"a\": 1\n}" {
			t.Errorf("JSONToString() = %q", got)
		}
	})

	t.Run("unmarshalable does not panic", func(t *testing.T) {
		got := JSONToString(make(chan int))
		if !strings.Contains(got, "error") {
			t.Errorf("expected error string, got %q", got)
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Run("short string unchanged", func(t *testing.T) {
		if got := TruncateString("hello", 10); got != "hello" {
			t.Errorf("TruncateString() = %q", got)
		}
	})

	t.Run("long string truncated with total length", func(t *testing.T) {
		got := TruncateString(strings.Repeat("a", 20), 5)
		if !strings.HasPrefix(got, "aaaaa...") {
			t.Errorf("TruncateString() = %q", got)
		}
		if !strings.Contains(got, "total: 20 chars") {
			t.Errorf("expected total length note, got %q", got)
		}
	})

	t.Run("non-positive maxLen uses default", func(t *testing.T) {
		long := strings.Repeat("b", DefaultMaxStringLength+1)
		got := TruncateString(long, 0)
		if len(got) >= len(long) {
			t.Errorf("expected truncation at default length, got len %d", len(got))
		}
	})
}

func TestTruncateStringDefault(t *testing.T) {
	long := strings.Repeat("c", DefaultMaxStringLength*2)
	got := TruncateStringDefault(long)
	if !strings.Contains(got, "truncated") {
		t.Errorf("expected truncation marker, got len %d", len(got))
	}
}
