// Package observability defines the lightweight tracing and structured
// logging facade used across the provider and transport layers. Spans and
// observers travel through context.Context; code that has neither configured
// pays only a nil check. The slogobs subpackage provides a standard-library
// slog backend.
package observability
