package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/providers"
	"github.com/BaSui01/schemaflow/testutil"
	"github.com/BaSui01/schemaflow/types"
)

const messageFixture = `{
	"id": "msg_01XYZ",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-5-sonnet-20241022",
	"content": [
		{"type": "text", "text": "{\"name\": "},
		{"type": "text", "text": "\"Ada\"}"}
	],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 30, "output_tokens": 8}
}`

func TestClaudeProvider_Name(t *testing.T) {
	provider := New(providers.AnthropicConfig{}, zap.NewNop())
	assert.Equal(t, "claude", provider.Name())
}

func TestClaudeProvider_Complete(t *testing.T) {
	var (
		capturedPath    string
		capturedKey     string
		capturedVersion string
		capturedBody    claudeRequest
		decodeErr       error
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedKey = r.Header.Get("x-api-key")
		capturedVersion = r.Header.Get("anthropic-version")
		decodeErr = json.NewDecoder(r.Body).Decode(&capturedBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, messageFixture)
	}))
	defer server.Close()

	provider := New(providers.AnthropicConfig{
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
		Model:   "claude-3-5-sonnet-20241022",
	}, zap.NewNop())

	resp, err := provider.Complete(testutil.TestContextWithTimeout(t, 5*time.Second), &llm.CompletionRequest{
		SystemPrompt: "You are terse.",
		UserPrompt:   "Extract the name.",
		MaxTokens:    512,
		Temperature:  0.3,
	})
	require.NoError(t, err)
	require.NoError(t, decodeErr)

	assert.Equal(t, "/v1/messages", capturedPath)
	assert.Equal(t, "sk-ant-test", capturedKey)
	assert.Equal(t, "2023-06-01", capturedVersion)

	// system 提示走顶层字段，不进入 messages 数组
	assert.Equal(t, "You are terse.", capturedBody.System)
	require.Len(t, capturedBody.Messages, 1)
	assert.Equal(t, "user", capturedBody.Messages[0].Role)
	require.Len(t, capturedBody.Messages[0].Content, 1)
	assert.Equal(t, "text", capturedBody.Messages[0].Content[0].Type)
	assert.Equal(t, "Extract the name.", capturedBody.Messages[0].Content[0].Text)
	assert.Equal(t, 512, capturedBody.MaxTokens)

	// text block 按顺序拼接
	assert.Equal(t, `{"name": "Ada"}`, resp.Content)
	assert.Equal(t, "claude-3-5-sonnet-20241022", resp.Model)
	assert.Equal(t, llm.Usage{PromptTokens: 30, CompletionTokens: 8, TotalTokens: 38}, resp.Usage)
}

func TestClaudeProvider_Complete_DefaultsMaxTokens(t *testing.T) {
	var capturedBody claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		fmt.Fprint(w, messageFixture)
	}))
	defer server.Close()

	provider := New(providers.AnthropicConfig{APIKey: "sk-ant-test", BaseURL: server.URL}, zap.NewNop())

	_, err := provider.Complete(context.Background(), &llm.CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)

	// max_tokens 为必填字段，未指定时补默认值
	assert.Equal(t, 4096, capturedBody.MaxTokens)
	assert.Equal(t, "claude-3-5-sonnet-20241022", capturedBody.Model)
	assert.Empty(t, capturedBody.System)
}

func TestClaudeProvider_Complete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectedCode  types.ErrorCode
		expectedRetry bool
		msgContains   string
	}{
		{
			name:          "401 maps to authentication",
			status:        http.StatusUnauthorized,
			body:          `{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`,
			expectedCode:  types.ErrAuthentication,
			expectedRetry: false,
			msgContains:   "invalid x-api-key (type: authentication_error)",
		},
		{
			name:          "429 maps to rate limit",
			status:        http.StatusTooManyRequests,
			body:          `{"type": "error", "error": {"type": "rate_limit_error", "message": "Number of requests exceeded"}}`,
			expectedCode:  types.ErrRateLimit,
			expectedRetry: true,
			msgContains:   "Number of requests exceeded",
		},
		{
			name:          "400 prompt too long maps to context too long",
			status:        http.StatusBadRequest,
			body:          `{"type": "error", "error": {"type": "invalid_request_error", "message": "prompt is too long: 210000 tokens > 200000 maximum"}}`,
			expectedCode:  types.ErrContextTooLong,
			expectedRetry: false,
			msgContains:   "prompt is too long",
		},
		{
			name:          "529 maps to model overloaded",
			status:        529,
			body:          `{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`,
			expectedCode:  types.ErrModelOverloaded,
			expectedRetry: true,
			msgContains:   "Overloaded (type: overloaded_error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			provider := New(providers.AnthropicConfig{APIKey: "sk-ant-test", BaseURL: server.URL}, zap.NewNop())

			_, err := provider.Complete(context.Background(), &llm.CompletionRequest{UserPrompt: "hi"})
			require.Error(t, err)

			var te *types.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.expectedCode, te.Code)
			assert.Equal(t, tt.expectedRetry, te.Retryable)
			assert.Equal(t, "claude", te.Provider)
			assert.Contains(t, te.Message, tt.msgContains)
		})
	}
}

func TestClaudeProvider_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		var capturedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedPath = r.URL.Path
			fmt.Fprint(w, `{"data": []}`)
		}))
		defer server.Close()

		provider := New(providers.AnthropicConfig{APIKey: "sk-ant-test", BaseURL: server.URL}, zap.NewNop())

		require.NoError(t, provider.HealthCheck(context.Background()))
		assert.Equal(t, "/v1/models", capturedPath)
	})

	t.Run("unhealthy status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`)
		}))
		defer server.Close()

		provider := New(providers.AnthropicConfig{APIKey: "bad", BaseURL: server.URL}, zap.NewNop())

		err := provider.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claude health check failed")
	})
}

func TestClaudeProvider_CustomAPIVersion(t *testing.T) {
	var capturedVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedVersion = r.Header.Get("anthropic-version")
		fmt.Fprint(w, messageFixture)
	}))
	defer server.Close()

	provider := New(providers.AnthropicConfig{
		APIKey:     "sk-ant-test",
		BaseURL:    server.URL,
		APIVersion: "2024-10-22",
	}, zap.NewNop())

	_, err := provider.Complete(context.Background(), &llm.CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "2024-10-22", capturedVersion)
}

func TestClaudeProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set, skipping integration test")
	}

	provider := New(providers.AnthropicConfig{
		APIKey:  apiKey,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 60 * time.Second,
	}, zap.NewNop())

	ctx := context.Background()

	t.Run("HealthCheck", func(t *testing.T) {
		require.NoError(t, provider.HealthCheck(ctx))
	})

	t.Run("Complete", func(t *testing.T) {
		resp, err := provider.Complete(ctx, &llm.CompletionRequest{
			UserPrompt:  "Say 'test' only",
			MaxTokens:   10,
			Temperature: 0.1,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Content)
	})
}
