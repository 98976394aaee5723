// Package schemaflow provides a top-level convenience entry point for
// creating schema-constrained generators with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/schemaflow"
//
//	g, err := schemaflow.New(schemaflow.WithOpenAI("gpt-4o-mini"))
//	g, err := schemaflow.New(schemaflow.WithAnthropic("claude-sonnet-4-20250514"))
//	g, err := schemaflow.New(schemaflow.WithProvider(myProvider), schemaflow.WithModel("custom"))
//
// This is a thin wrapper around [quick.New]; both produce identical results.
// Use this package when you prefer the shorter import path.
package schemaflow

import (
	"github.com/BaSui01/schemaflow/quick"
	"github.com/BaSui01/schemaflow/structured"
)

// Version is the library release version. Binaries built from cmd/schemaflow
// carry their own build-time version via ldflags.
const Version = "0.4.0"

// Option configures the generator created by [New].
type Option = quick.Option

// New creates a [structured.Generator] with minimal configuration.
// At minimum, a provider must be specified via [WithOpenAI], [WithAnthropic],
// or [WithProvider].
func New(opts ...Option) (*structured.Generator, error) {
	return quick.New(opts...)
}

// Re-export provider shortcuts so callers never need to import quick/.

// WithProvider sets a pre-built model provider.
var WithProvider = quick.WithProvider

// WithOpenAI creates an OpenAI provider. API key from OPENAI_API_KEY env.
var WithOpenAI = quick.WithOpenAI

// WithAnthropic creates an Anthropic Claude provider. API key from ANTHROPIC_API_KEY env.
var WithAnthropic = quick.WithAnthropic

// WithModel overrides the model name.
var WithModel = quick.WithModel

// WithMaxTokens caps single-completion token usage.
var WithMaxTokens = quick.WithMaxTokens

// WithTemperature sets the sampling temperature.
var WithTemperature = quick.WithTemperature

// WithLogger sets a custom zap logger.
var WithLogger = quick.WithLogger

// WithAPIKey overrides the API key for provider shortcuts.
var WithAPIKey = quick.WithAPIKey

// WithBaseURL overrides the provider endpoint.
var WithBaseURL = quick.WithBaseURL
