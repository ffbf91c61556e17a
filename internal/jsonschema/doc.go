// Package jsonschema provides a minimal JSON Schema value type used to
// declare tool parameters offered to LLM providers. Schemas are plain data:
// they marshal to standard JSON Schema and are passed through to each
// vendor's tool declaration format without interpretation.
package jsonschema
