// Package utils contains shared HTTP and parsing helpers for the provider
// implementations: synchronous JSON POST, streaming POST with an SSE frame
// scanner, and tolerant JSON string parsing.
package utils
