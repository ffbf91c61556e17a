package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength bounds strings destined for log output.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON. Pass true as the optional indent
// argument for two-space pretty printing. Marshalling failures yield a
// JSON-formatted error string instead of panicking, so the result is always
// safe to log.
func JSONToString(object any, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// ToString is shorthand for [JSONToString] without indentation.
func ToString(object any) string {
	return JSONToString(object)
}

// TruncateString shortens s to at most maxLen characters, appending a note
// with the original length when data was dropped. A non-positive maxLen
// falls back to [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateStringDefault truncates s using [DefaultMaxStringLength].
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
