// =============================================================================
// Package quick — One-Line Generator Construction
// =============================================================================
// Provides a convenience entry point for creating schema-constrained
// generators with minimal boilerplate. Delegates to providers/ and
// structured.NewGenerator internally.
//
// The package lives under quick/ (not root) so the root package can
// re-export it without importing provider implementations twice.
//
// Usage:
//
//	import "github.com/BaSui01/schemaflow/quick"
//
//	g, err := quick.New(quick.WithOpenAI("gpt-4o-mini"))
//	g, err := quick.New(quick.WithAnthropic("claude-sonnet-4-20250514"))
//	g, err := quick.New(quick.WithProvider(myProvider), quick.WithModel("custom"))
//
// =============================================================================
package quick

import (
	"fmt"
	"os"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/providers"
	"github.com/BaSui01/schemaflow/providers/anthropic"
	"github.com/BaSui01/schemaflow/providers/openai"
	"github.com/BaSui01/schemaflow/structured"

	"go.uber.org/zap"
)

// Option configures the generator created by New.
type Option func(*options)

type options struct {
	model       string
	maxTokens   int
	temperature float32
	provider    llm.Provider
	logger      *zap.Logger

	// Provider shortcut fields — used when provider is nil.
	providerName string
	apiKey       string
	baseURL      string
}

// WithProvider sets a pre-built model provider.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithOpenAI creates an OpenAI provider using the given model.
// API key is read from OPENAI_API_KEY environment variable.
func WithOpenAI(model string) Option {
	return func(o *options) {
		o.providerName = "openai"
		o.model = model
		if o.apiKey == "" {
			o.apiKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// WithAnthropic creates an Anthropic Claude provider using the given model.
// API key is read from ANTHROPIC_API_KEY environment variable.
func WithAnthropic(model string) Option {
	return func(o *options) {
		o.providerName = "anthropic"
		o.model = model
		if o.apiKey == "" {
			o.apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

// WithModel sets the model name. Overrides the model set by provider shortcuts.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithMaxTokens caps the tokens of a single completion. 0 uses the default.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithTemperature sets the sampling temperature. Schema-constrained
// generation works best at 0.
func WithTemperature(t float32) Option {
	return func(o *options) { o.temperature = t }
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAPIKey overrides the API key for provider shortcuts (WithOpenAI, etc.).
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the provider endpoint, e.g. for self-hosted gateways.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// New creates a structured.Generator with minimal configuration.
func New(opts ...Option) (*structured.Generator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	// Resolve provider.
	p := o.provider
	if p == nil {
		if o.providerName == "" {
			return nil, fmt.Errorf("provider is required: use WithProvider, WithOpenAI, or WithAnthropic")
		}
		if o.apiKey == "" {
			return nil, fmt.Errorf("API key is required for %s: set the environment variable or use WithAPIKey", o.providerName)
		}
		switch o.providerName {
		case "openai":
			p = openai.New(providers.OpenAIConfig{
				APIKey:  o.apiKey,
				BaseURL: o.baseURL,
				Model:   o.model,
			}, o.logger)
		case "anthropic":
			p = anthropic.New(providers.AnthropicConfig{
				APIKey:  o.apiKey,
				BaseURL: o.baseURL,
				Model:   o.model,
			}, o.logger)
		default:
			return nil, fmt.Errorf("unsupported provider: %s", o.providerName)
		}
	}

	completer := llm.NewCompleter(p, llm.CompleterConfig{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}, o.logger)

	return structured.NewGenerator(completer, o.logger), nil
}
