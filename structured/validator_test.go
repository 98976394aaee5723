package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustValue 将 JSON 文本解析为 Value，解析失败立即终止测试
func mustValue(t *testing.T, data string) Value {
	t.Helper()
	v, err := ParseResponse(data)
	require.NoError(t, err)
	return v
}

func TestValidate_RequiredProperties(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("a", NewStringSchema()).
		AddRequired("a")

	tests := []struct {
		name    string
		data    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "required present",
			data:    `{"a": "x"}`,
			wantErr: false,
		},
		{
			name:    "required missing",
			data:    `{}`,
			wantErr: true,
			errMsg:  "Missing required property: 'a'",
		},
		{
			name:    "required present with extras",
			data:    `{"a": "x", "unrelated": 42}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustValue(t, tt.data), schema)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ArrayBounds(t *testing.T) {
	schema := NewArraySchema(NewNumberSchema()).WithMinItems(2).WithMaxItems(3)

	tests := []struct {
		name    string
		data    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "below minimum",
			data:    `[1]`,
			wantErr: true,
			errMsg:  "Array has 1 items, minimum is 2",
		},
		{
			name:    "at minimum",
			data:    `[1, 2]`,
			wantErr: false,
		},
		{
			name:    "at maximum",
			data:    `[1, 2, 3]`,
			wantErr: false,
		},
		{
			name:    "above maximum",
			data:    `[1, 2, 3, 4]`,
			wantErr: true,
			errMsg:  "Array has 4 items, maximum is 3",
		},
		{
			name:    "non-numeric element",
			data:    `[1, "two", 3]`,
			wantErr: true,
			errMsg:  "Item at index 1: Expected number, got string",
		},
		{
			name:    "element check precedes bounds check",
			data:    `["one"]`,
			wantErr: true,
			errMsg:  "Item at index 0: Expected number, got string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustValue(t, tt.data), schema)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_EmptyArray(t *testing.T) {
	// items 校验对空数组是空真，仅剩界限约束
	unbounded := NewArraySchema(NewNumberSchema())
	assert.NoError(t, Validate(mustValue(t, `[]`), unbounded))

	bounded := NewArraySchema(NewNumberSchema()).WithMinItems(1)
	err := Validate(mustValue(t, `[]`), bounded)
	require.Error(t, err)
	assert.EqualError(t, err, "Array has 0 items, minimum is 1")
}

func TestValidate_Scalars(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		schema  *JSONSchema
		wantErr bool
		errMsg  string
	}{
		{name: "string ok", data: `"hello"`, schema: NewStringSchema()},
		{name: "string mismatch", data: `123`, schema: NewStringSchema(), wantErr: true, errMsg: "Expected string, got number"},
		{name: "number ok", data: `3.5`, schema: NewNumberSchema()},
		{name: "number mismatch", data: `"3.5"`, schema: NewNumberSchema(), wantErr: true, errMsg: "Expected number, got string"},
		{name: "integer accepts whole number", data: `7`, schema: NewIntegerSchema()},
		{name: "integer accepts fractional number", data: `7.5`, schema: NewIntegerSchema()},
		{name: "integer mismatch", data: `true`, schema: NewIntegerSchema(), wantErr: true, errMsg: "Expected integer, got boolean"},
		{name: "boolean ok", data: `false`, schema: NewBooleanSchema()},
		{name: "boolean mismatch", data: `null`, schema: NewBooleanSchema(), wantErr: true, errMsg: "Expected boolean, got null"},
		{name: "null ok", data: `null`, schema: NewNullSchema()},
		{name: "null mismatch", data: `{}`, schema: NewNullSchema(), wantErr: true, errMsg: "Expected null, got object"},
		{name: "object mismatch", data: `[1]`, schema: NewObjectSchema(), wantErr: true, errMsg: "Expected object, got array"},
		{name: "array mismatch", data: `{"a": 1}`, schema: NewArraySchema(NewNumberSchema()), wantErr: true, errMsg: "Expected array, got object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustValue(t, tt.data), tt.schema)
			if tt.wantErr {
				require.Error(t, err)
				assert.EqualError(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_UnknownSchemaType(t *testing.T) {
	schema := NewSchema(SchemaType("weird"))

	for _, data := range []string{`"anything"`, `42`, `{}`, `null`} {
		err := Validate(mustValue(t, data), schema)
		require.Error(t, err)
		assert.EqualError(t, err, "Unknown schema type: weird")
	}
}

func TestValidate_MissingSchemaType(t *testing.T) {
	err := Validate(String("x"), nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Schema missing 'type' property")

	err = Validate(String("x"), &JSONSchema{})
	require.Error(t, err)
	assert.EqualError(t, err, "Schema missing 'type' property")
}

func TestValidate_NestedErrorPrefixes(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("a", NewObjectSchema().
			AddProperty("b", NewStringSchema()).
			AddRequired("b")).
		AddRequired("a")

	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{
			name:   "nested type mismatch carries both property names",
			data:   `{"a": {"b": 1}}`,
			errMsg: "Property 'a': Property 'b': Expected string, got number",
		},
		{
			name:   "nested missing required",
			data:   `{"a": {}}`,
			errMsg: "Property 'a': Missing required property: 'b'",
		},
		{
			name:   "nested wrong container kind",
			data:   `{"a": [1]}`,
			errMsg: "Property 'a': Expected object, got array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(mustValue(t, tt.data), schema)
			require.Error(t, err)
			assert.EqualError(t, err, tt.errMsg)
		})
	}

	arraySchema := NewObjectSchema().
		AddProperty("scores", NewArraySchema(NewNumberSchema()))
	err := Validate(mustValue(t, `{"scores": [1, "x"]}`), arraySchema)
	require.Error(t, err)
	assert.EqualError(t, err, "Property 'scores': Item at index 1: Expected number, got string")
}

func TestValidate_FirstFailureIsDeterministic(t *testing.T) {
	// 两个属性同时违规时，报告按属性名排序的第一个
	schema := NewObjectSchema().
		AddProperty("zulu", NewStringSchema()).
		AddProperty("alpha", NewStringSchema())

	err := Validate(mustValue(t, `{"zulu": 1, "alpha": 2}`), schema)
	require.Error(t, err)
	assert.EqualError(t, err, "Property 'alpha': Expected string, got number")
}

func TestValidate_RequiredCheckedBeforeProperties(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("a", NewStringSchema()).
		AddProperty("b", NewStringSchema()).
		AddRequired("b")

	// a 类型违规且 b 缺失：先报缺失
	err := Validate(mustValue(t, `{"a": 1}`), schema)
	require.Error(t, err)
	assert.EqualError(t, err, "Missing required property: 'b'")
}

func TestValidate_OpenObjectSemantics(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("name", NewStringSchema())

	// 未声明的键不检查，声明了但缺席的可选属性不报错
	assert.NoError(t, Validate(mustValue(t, `{"name": "x", "anything": [1, {"deep": true}]}`), schema))
	assert.NoError(t, Validate(mustValue(t, `{}`), schema))
}

func TestValidate_ValidationErrorType(t *testing.T) {
	err := Validate(Number(1), NewStringSchema())
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Expected string, got number", ve.Message)
	assert.Equal(t, ve.Message, ve.Error())
}
