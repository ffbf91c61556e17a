package ai

import "fmt"

// InvalidRoleError reports a message whose role is not one of the canonical
// roles, or a vendor payload whose role label has no internal equivalent.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid message role %q", e.Role)
}

// MissingFieldError reports a message that cannot be represented in a vendor
// format because a field the vendor requires is absent, such as a tool result
// without a call id heading to an id-correlated API.
type MissingFieldError struct {
	Field  string
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("missing required field %q: %s", e.Field, e.Reason)
}

// SerializationError wraps a JSON encode/decode failure encountered during
// conversion or stream parsing.
type SerializationError struct {
	Context string
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization failed (%s): %v", e.Context, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// UnsupportedFeatureError reports a message feature that the target vendor
// cannot express.
type UnsupportedFeatureError struct {
	Feature string
	Vendor  string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("feature %q is not supported by %s", e.Feature, e.Vendor)
}

// StreamChunkError reports a malformed SSE frame. Once a parser returns this
// error it is in a terminal errored state and ignores further frames.
type StreamChunkError struct {
	EventType string
	Data      string
	Reason    string
	Err       error
}

func (e *StreamChunkError) Error() string {
	msg := fmt.Sprintf("malformed stream chunk: %s", e.Reason)
	if e.EventType != "" {
		msg += fmt.Sprintf(" (event %q)", e.EventType)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StreamChunkError) Unwrap() error {
	return e.Err
}
