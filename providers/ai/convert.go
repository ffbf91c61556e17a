package ai

// Converter translates between the internal [Message] model and one vendor's
// wire message type V. Implementations are deterministic and side-effect-free;
// the only sanctioned exception is the Gemini converter's id generator, which
// synthesizes ids for inbound tool calls because the Gemini API carries none.
//
// Both directions return new values and never mutate their input. Round trips
// preserve semantic content: role, text, tool-call name/id/arguments, and
// tool-result correlation survive Message -> V -> Message, though vendor
// formats that cannot carry a field (Gemini tool-call ids) lose exactly that
// field.
type Converter[V any] interface {
	// FromProvider converts a vendor wire message to the internal model.
	FromProvider(vendorMessage V) (Message, error)

	// ToProvider converts an internal message to the vendor wire format.
	// System messages are handled here only for vendors that carry them
	// inline; out-of-band system extraction happens during request building.
	ToProvider(message Message) (V, error)
}

// ConvertMessages converts a batch of internal messages to vendor format,
// preserving order. The first conversion error aborts the batch.
func ConvertMessages[V any](converter Converter[V], messages []Message) ([]V, error) {
	converted := make([]V, 0, len(messages))
	for _, message := range messages {
		vendorMessage, err := converter.ToProvider(message)
		if err != nil {
			return nil, err
		}
		converted = append(converted, vendorMessage)
	}
	return converted, nil
}

// ParseMessages converts a batch of vendor messages to the internal model,
// preserving order. The first conversion error aborts the batch.
func ParseMessages[V any](converter Converter[V], vendorMessages []V) ([]Message, error) {
	parsed := make([]Message, 0, len(vendorMessages))
	for _, vendorMessage := range vendorMessages {
		message, err := converter.FromProvider(vendorMessage)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, message)
	}
	return parsed, nil
}
