package structured

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged-union representation of a parsed JSON value.
// Only the field matching Kind is meaningful; the zero Value is null.
// Values are produced by parsing and must be treated as immutable.
type Value struct {
	Kind   Kind
	Bool   bool
	Num    float64
	Str    string
	Items  []Value
	Fields map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Boolean wraps a bool into a Value.
func Boolean(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Number wraps a float64 into a Value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// String wraps a string into a Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Array wraps a list of Values into an array Value.
func Array(items ...Value) Value {
	return Value{Kind: KindArray, Items: items}
}

// Object wraps a field map into an object Value.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{Kind: KindObject, Fields: fields}
}

// fromAny converts the output of encoding/json decoding (nil, bool,
// float64, string, []any, map[string]any) into a Value.
func fromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Boolean(t)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromAny(item)
		}
		return Value{Kind: KindArray, Items: items}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = fromAny(item)
		}
		return Value{Kind: KindObject, Fields: fields}
	default:
		// encoding/json never produces other dynamic types when
		// decoding into any.
		return Null()
	}
}

// Interface converts the Value back into plain Go types suitable for
// encoding/json marshalling.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindArray:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Interface()
		}
		return items
	case KindObject:
		fields := make(map[string]any, len(v.Fields))
		for k, item := range v.Fields {
			fields[k] = item.Interface()
		}
		return fields
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
