package structured

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/schemaflow/types"
)

// ParseResponse strips one level of markdown fencing the model may have
// added and parses the remaining text as a JSON fragment. Any top-level
// value is accepted: scalar, array, or object.
//
// Exactly one opening marker (```json or a bare ```) and one closing
// marker are removed; nested or malformed fences are left in place and
// surface as parse failures. On failure the returned error is a
// types.Error with code INVALID_JSON.
func ParseResponse(raw string) (Value, error) {
	text := stripFence(strings.TrimSpace(raw))

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return Value{}, types.NewError(types.ErrInvalidJSON,
			fmt.Sprintf("Invalid JSON: %v", err)).WithCause(err)
	}
	return fromAny(decoded), nil
}

func stripFence(text string) string {
	if rest, ok := strings.CutPrefix(text, "```json"); ok {
		text = rest
	} else if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = rest
	}
	if rest, ok := strings.CutSuffix(text, "```"); ok {
		text = rest
	}
	return strings.TrimSpace(text)
}
