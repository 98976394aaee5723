package llm

import (
	"context"
	"time"
)

// CompletionRequest carries one stateless completion call. Every call is
// self-contained: a system instruction plus a user instruction, no
// conversation carried across calls.
type CompletionRequest struct {
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	UserPrompt   string  `json:"user_prompt"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
}

// Usage reports token consumption as counted by the upstream API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// CompletionResponse is the provider's answer to a completion call.
type CompletionResponse struct {
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	Usage     Usage     `json:"usage"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Provider is the interface every upstream model integration implements.
// Implementations are plain HTTP clients; they own timeout policy and map
// upstream failures to *types.Error values.
type Provider interface {
	// Complete performs a single text completion.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// HealthCheck probes the upstream endpoint. A nil return means the
	// provider can serve completions right now.
	HealthCheck(ctx context.Context) error

	// Name returns the provider identifier used in logs and metrics.
	Name() string
}
