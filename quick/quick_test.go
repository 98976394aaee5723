package quick

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/schemaflow/structured"
	"github.com/BaSui01/schemaflow/testutil/mocks"
	"github.com/BaSui01/schemaflow/types"
)

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New(WithOpenAI("gpt-4o-mini"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNew_WithProvider(t *testing.T) {
	mock := mocks.NewMockProvider().WithResponse(`{"ok":true}`)

	g, err := New(WithProvider(mock), WithModel("mock-model"))
	require.NoError(t, err)

	v, err := g.Generate(context.Background(),
		[]types.Message{{Role: types.RoleUser, Content: "check"}},
		&structured.JSONSchema{Type: "object"})
	require.NoError(t, err)

	assert.Equal(t, structured.KindObject, v.Kind)
	assert.True(t, v.Fields["ok"].Bool)
	assert.Equal(t, 1, mock.GetCallCount())
}

func TestNew_WithOpenAIKeyFromOption(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	g, err := New(WithOpenAI("gpt-4o-mini"), WithAPIKey("sk-test"))
	require.NoError(t, err)
	assert.NotNil(t, g)
}
