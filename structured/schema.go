// Package structured provides schema-constrained generation on top of a
// free-text model: schema modelling, prompt construction, response parsing,
// validation, and the bounded retry orchestrator.
package structured

import (
	"encoding/json"
	"fmt"
)

// SchemaType represents JSON Schema types.
type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeNull    SchemaType = "null"
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
)

// JSONSchema represents a JSON Schema definition restricted to the subset
// the service supports: a type tag, object properties/required, array
// items and length bounds. Unsupported keywords ($ref, oneOf, enum,
// pattern, numeric ranges) are ignored when decoding rather than rejected.
//
// A schema carrying an unrecognized or missing type is still a usable
// schema object; the mismatch is reported at validation time as a
// value-level error, never as a construction-time rejection.
type JSONSchema struct {
	// Type definition
	Type SchemaType `json:"type,omitempty"`

	// Object properties
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`

	// Array items. MinItems and MaxItems are optional non-negative
	// bounds; minItems <= maxItems is the caller's responsibility and
	// is not enforced here.
	Items    *JSONSchema `json:"items,omitempty"`
	MinItems *int        `json:"minItems,omitempty"`
	MaxItems *int        `json:"maxItems,omitempty"`
}

// NewSchema creates a new JSONSchema with the specified type.
func NewSchema(t SchemaType) *JSONSchema {
	return &JSONSchema{Type: t}
}

// NewObjectSchema creates a new object schema.
func NewObjectSchema() *JSONSchema {
	return &JSONSchema{
		Type:       TypeObject,
		Properties: make(map[string]*JSONSchema),
	}
}

// NewArraySchema creates a new array schema with the specified items schema.
func NewArraySchema(items *JSONSchema) *JSONSchema {
	return &JSONSchema{
		Type:  TypeArray,
		Items: items,
	}
}

// NewStringSchema creates a new string schema.
func NewStringSchema() *JSONSchema {
	return &JSONSchema{Type: TypeString}
}

// NewNumberSchema creates a new number schema.
func NewNumberSchema() *JSONSchema {
	return &JSONSchema{Type: TypeNumber}
}

// NewIntegerSchema creates a new integer schema.
func NewIntegerSchema() *JSONSchema {
	return &JSONSchema{Type: TypeInteger}
}

// NewBooleanSchema creates a new boolean schema.
func NewBooleanSchema() *JSONSchema {
	return &JSONSchema{Type: TypeBoolean}
}

// NewNullSchema creates a new null schema.
func NewNullSchema() *JSONSchema {
	return &JSONSchema{Type: TypeNull}
}

// AddProperty adds a property to an object schema.
func (s *JSONSchema) AddProperty(name string, prop *JSONSchema) *JSONSchema {
	if s.Properties == nil {
		s.Properties = make(map[string]*JSONSchema)
	}
	s.Properties[name] = prop
	return s
}

// AddRequired adds required property names to an object schema.
func (s *JSONSchema) AddRequired(names ...string) *JSONSchema {
	s.Required = append(s.Required, names...)
	return s
}

// WithMinItems sets the minimum items for an array schema.
func (s *JSONSchema) WithMinItems(min int) *JSONSchema {
	s.MinItems = &min
	return s
}

// WithMaxItems sets the maximum items for an array schema.
func (s *JSONSchema) WithMaxItems(max int) *JSONSchema {
	s.MaxItems = &max
	return s
}

// Clone creates a deep copy of the schema.
func (s *JSONSchema) Clone() *JSONSchema {
	if s == nil {
		return nil
	}

	clone := &JSONSchema{Type: s.Type}

	if s.Properties != nil {
		clone.Properties = make(map[string]*JSONSchema, len(s.Properties))
		for k, v := range s.Properties {
			clone.Properties[k] = v.Clone()
		}
	}
	if s.Required != nil {
		clone.Required = make([]string, len(s.Required))
		copy(clone.Required, s.Required)
	}
	clone.Items = s.Items.Clone()
	if s.MinItems != nil {
		v := *s.MinItems
		clone.MinItems = &v
	}
	if s.MaxItems != nil {
		v := *s.MaxItems
		clone.MaxItems = &v
	}

	return clone
}

// Canonical serializes the schema with sorted object keys and stable
// two-space indentation, so the same schema always produces byte-identical
// text. Prompts embed this form; tests rely on its determinism.
func (s *JSONSchema) Canonical() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		// Unreachable for schemas built from JSON or the constructors
		// above; kept so Canonical never fails its callers.
		return "{}"
	}
	return string(data)
}

// ToJSON serializes the schema to compact JSON.
func (s *JSONSchema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON deserializes a schema from JSON.
func FromJSON(data []byte) (*JSONSchema, error) {
	var schema JSONSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON schema: %w", err)
	}
	return &schema, nil
}

// IsRequired checks if a property is required.
func (s *JSONSchema) IsRequired(name string) bool {
	for _, req := range s.Required {
		if req == name {
			return true
		}
	}
	return false
}

// GetProperty returns a property schema by name.
func (s *JSONSchema) GetProperty(name string) *JSONSchema {
	if s.Properties == nil {
		return nil
	}
	return s.Properties[name]
}

// HasProperty checks if a property exists.
func (s *JSONSchema) HasProperty(name string) bool {
	if s.Properties == nil {
		return false
	}
	_, ok := s.Properties[name]
	return ok
}
