package structured

import (
	"fmt"
	"sort"
)

// ValidationError describes the first constraint violation found while
// validating a value against a schema. It carries exactly one message;
// nested failures are prefixed with the property name or array index on
// the way up, one level per call.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks a parsed value against a schema and returns nil when the
// value satisfies it, or a ValidationError naming the first violation.
//
// Validation is pure and total: any combination of value and schema shapes
// yields a result, never a panic. It stops at the first failure in
// depth-first encounter order (required names first, then properties in
// sorted name order, array elements in index order). Object keys without a
// declared property schema are accepted unchecked, and length bounds on
// arrays are checked after element validation.
func Validate(value Value, schema *JSONSchema) error {
	if schema == nil || schema.Type == "" {
		return validationErrorf("Schema missing 'type' property")
	}

	switch schema.Type {
	case TypeObject:
		return validateObject(value, schema)
	case TypeArray:
		return validateArray(value, schema)
	case TypeString:
		if value.Kind != KindString {
			return typeMismatch(TypeString, value.Kind)
		}
		return nil
	case TypeNumber:
		if value.Kind != KindNumber {
			return typeMismatch(TypeNumber, value.Kind)
		}
		return nil
	case TypeInteger:
		// Numeric tags satisfy integer and number alike; integral-ness
		// is not checked.
		if value.Kind != KindNumber {
			return typeMismatch(TypeInteger, value.Kind)
		}
		return nil
	case TypeBoolean:
		if value.Kind != KindBool {
			return typeMismatch(TypeBoolean, value.Kind)
		}
		return nil
	case TypeNull:
		if value.Kind != KindNull {
			return typeMismatch(TypeNull, value.Kind)
		}
		return nil
	default:
		return validationErrorf("Unknown schema type: %s", schema.Type)
	}
}

func typeMismatch(want SchemaType, got Kind) *ValidationError {
	return validationErrorf("Expected %s, got %s", want, got)
}

func validateObject(value Value, schema *JSONSchema) error {
	if value.Kind != KindObject {
		return typeMismatch(TypeObject, value.Kind)
	}

	for _, name := range schema.Required {
		if _, ok := value.Fields[name]; !ok {
			return validationErrorf("Missing required property: '%s'", name)
		}
	}

	// Sorted property order keeps the first failure deterministic.
	for _, name := range sortedPropertyNames(schema.Properties) {
		fieldValue, ok := value.Fields[name]
		if !ok {
			// Declared but absent and not required: not an error.
			continue
		}
		if err := Validate(fieldValue, schema.Properties[name]); err != nil {
			return validationErrorf("Property '%s': %s", name, err.Error())
		}
	}

	// Keys without a declared property schema are accepted unchecked.
	return nil
}

func validateArray(value Value, schema *JSONSchema) error {
	if value.Kind != KindArray {
		return typeMismatch(TypeArray, value.Kind)
	}

	if schema.Items != nil {
		for i, item := range value.Items {
			if err := Validate(item, schema.Items); err != nil {
				return validationErrorf("Item at index %d: %s", i, err.Error())
			}
		}
	}

	if schema.MinItems != nil && len(value.Items) < *schema.MinItems {
		return validationErrorf("Array has %d items, minimum is %d", len(value.Items), *schema.MinItems)
	}
	if schema.MaxItems != nil && len(value.Items) > *schema.MaxItems {
		return validationErrorf("Array has %d items, maximum is %d", len(value.Items), *schema.MaxItems)
	}

	return nil
}

func sortedPropertyNames(props map[string]*JSONSchema) []string {
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
