package structured

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/testutil/mocks"
	"github.com/BaSui01/schemaflow/types"
)

// modelReplyGen draws a raw model response from a pool that covers the
// interesting outcomes: conforming, fenced, missing required, wrong leaf
// type, non-JSON prose, and a wrong top-level kind.
func modelReplyGen() gopter.Gen {
	return gen.OneConstOf(
		`{"name": "ok"}`,
		"```json\n{\"name\": \"fenced\"}\n```",
		`{}`,
		`{"name": 42}`,
		"The JSON you requested follows shortly.",
		`[1, 2]`,
	)
}

func TestProperty_GenerateNeverExceedsTwoCalls(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("any reply pair drives between one and two model calls", prop.ForAll(
		func(first string, second string) bool {
			mock := mocks.NewScriptedCompleter(first, second)
			g := NewGenerator(mock, zap.NewNop())

			_, _ = g.Generate(context.Background(), extractMessages(), nameSchema())

			calls := mock.GetCallCount()
			if calls < 1 || calls > 2 {
				t.Logf("call count out of range: %d", calls)
				return false
			}
			return true
		},
		modelReplyGen(), // first attempt
		modelReplyGen(), // second attempt
	))

	properties.TestingRun(t)
}

func TestProperty_GenerateSuccessConformsToSchema(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("a value returned without error validates against the schema", prop.ForAll(
		func(first string, second string) bool {
			schema := nameSchema()
			mock := mocks.NewScriptedCompleter(first, second)
			g := NewGenerator(mock, zap.NewNop())

			value, err := g.Generate(context.Background(), extractMessages(), schema)
			if err != nil {
				return true
			}
			if verr := Validate(value, schema); verr != nil {
				t.Logf("returned value violates schema: %v", verr)
				return false
			}
			return true
		},
		modelReplyGen(), // first attempt
		modelReplyGen(), // second attempt
	))

	properties.TestingRun(t)
}

func TestProperty_GenerateFailuresUseStableCodes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("with a healthy completer, failures exhaust both attempts and carry a parse or validation code", prop.ForAll(
		func(first string, second string) bool {
			mock := mocks.NewScriptedCompleter(first, second)
			g := NewGenerator(mock, zap.NewNop())

			_, err := g.Generate(context.Background(), extractMessages(), nameSchema())
			if err == nil {
				return true
			}

			code := types.GetErrorCode(err)
			if code != types.ErrInvalidJSON && code != types.ErrSchemaMismatch {
				t.Logf("unexpected error code %q for replies %q, %q", code, first, second)
				return false
			}
			if mock.GetCallCount() != 2 {
				t.Logf("failed after %d calls, expected 2", mock.GetCallCount())
				return false
			}
			return true
		},
		modelReplyGen(), // first attempt
		modelReplyGen(), // second attempt
	))

	properties.TestingRun(t)
}

func TestProperty_GenerateValidFirstReplySkipsRetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("a conforming first reply settles the call without a correction round", prop.ForAll(
		func(first string, second string) bool {
			schema := nameSchema()

			// Oracle: decide conformance with the pure parse and validate steps.
			parsed, perr := ParseResponse(first)
			firstConforms := perr == nil && Validate(parsed, schema) == nil

			mock := mocks.NewScriptedCompleter(first, second)
			g := NewGenerator(mock, zap.NewNop())

			_, err := g.Generate(context.Background(), extractMessages(), schema)
			if !firstConforms {
				return true
			}
			if err != nil {
				t.Logf("conforming first reply %q still failed: %v", first, err)
				return false
			}
			if mock.GetCallCount() != 1 {
				t.Logf("conforming first reply triggered %d calls", mock.GetCallCount())
				return false
			}
			return true
		},
		modelReplyGen(), // first attempt
		modelReplyGen(), // second attempt
	))

	properties.TestingRun(t)
}
