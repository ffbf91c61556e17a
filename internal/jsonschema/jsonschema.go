package jsonschema

import (
	"reflect"
	"strings"
)

// Schema represents a JSON Schema value used to describe tool parameters.
// It covers the subset of the standard that LLM tool declarations use:
// object/array/scalar types, property maps, required lists, and enums.
type Schema struct {
	// Type specifies the data type (e.g. "object", "array", "string", "number").
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object schema, each with its own schema.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items defines the element schema for array types.
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether undeclared properties are allowed.
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default value for the parameter.
	Default any `json:"default,omitempty"`
	// Enum lists the allowed values for the parameter.
	Enum []any `json:"enum,omitempty"`
}

// Object builds an object schema from a property map and the names of the
// required properties.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// String builds a string schema with the given description.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// Number builds a number schema with the given description.
func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

// Integer builds an integer schema with the given description.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// Boolean builds a boolean schema with the given description.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Array builds an array schema whose elements match the given item schema.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Items: items, Description: description}
}

// Enum builds a string schema restricted to the given values.
func Enum(description string, values ...string) *Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &Schema{Type: "string", Description: description, Enum: enum}
}

// Generate derives an object schema from a struct type via reflection.
// Field names follow the json tag (falling back to the Go field name),
// fields tagged json:"-" are skipped, and fields without omitempty are
// marked required. Descriptions come from a `description` struct tag.
//
// Nested structs, slices, and maps are handled one level at a time;
// recursive types are not supported and will not terminate.
func Generate[T any]() *Schema {
	return fromType(reflect.TypeFor[T]())
}

func fromType(t reflect.Type) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return fromStruct(t)
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: fromType(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: fromType(t.Elem())}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	default:
		// Interfaces and anything exotic become unconstrained values.
		return &Schema{}
	}
}

func fromStruct(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		omitEmpty := false

		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}

		fieldSchema := fromType(field.Type)
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema.Description = description
		}
		schema.Properties[name] = fieldSchema

		if !omitEmpty {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}
