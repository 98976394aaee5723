package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm/observability"
	"github.com/BaSui01/schemaflow/types"
)

// CompleterConfig 补全适配器配置
type CompleterConfig struct {
	// Model 发送给 Provider 的模型标识
	Model string `json:"model" yaml:"model"`
	// MaxTokens 单次补全的最大 token 数，0 使用默认值
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// Temperature 采样温度，结构化生成建议保持 0
	Temperature float32 `json:"temperature" yaml:"temperature"`
}

const defaultMaxTokens = 4096

// Completer adapts a Provider to the prompt-in, text-out contract the
// structured generator consumes, recording per-call latency, token usage
// and trace spans along the way.
type Completer struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float32
	counter     TokenCounter
	obs         *observability.Metrics
	logger      *zap.Logger
}

// NewCompleter 创建补全适配器
func NewCompleter(provider Provider, cfg CompleterConfig, logger *zap.Logger) *Completer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	obs, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("llm metrics unavailable, continuing without instrumentation", zap.Error(err))
		obs = nil
	}

	return &Completer{
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		counter:     NewTiktokenCounter(cfg.Model),
		obs:         obs,
		logger:      logger.With(zap.String("component", "completer")),
	}
}

// Complete sends one system+user prompt pair to the underlying provider and
// returns the raw response text.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	attrs := observability.RequestAttrs{Provider: c.provider.Name(), Model: c.model}

	var span trace.Span
	if c.obs != nil {
		ctx, span = c.obs.StartRequest(ctx, attrs)
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, &CompletionRequest{
		Model:        c.model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    c.maxTokens,
		Temperature:  c.temperature,
	})
	duration := time.Since(start)

	if err != nil {
		errCode := string(types.GetErrorCode(err))
		if errCode == "" {
			errCode = "UNKNOWN"
		}
		if c.obs != nil {
			c.obs.EndRequest(ctx, span, attrs, observability.ResponseAttrs{
				Status:    "error",
				ErrorCode: errCode,
				Duration:  duration,
			})
		}
		c.logger.Warn("model call failed",
			zap.String("provider", attrs.Provider),
			zap.String("model", c.model),
			zap.Duration("duration", duration),
			zap.Error(err))
		return "", err
	}

	// Providers that omit usage get token counts from the local tokenizer.
	promptTokens := resp.Usage.PromptTokens
	if promptTokens == 0 {
		promptTokens = c.counter.Count(systemPrompt) + c.counter.Count(userPrompt)
	}
	completionTokens := resp.Usage.CompletionTokens
	if completionTokens == 0 {
		completionTokens = c.counter.Count(resp.Content)
	}

	if c.obs != nil {
		c.obs.EndRequest(ctx, span, attrs, observability.ResponseAttrs{
			Status:           "success",
			TokensPrompt:     promptTokens,
			TokensCompletion: completionTokens,
			Duration:         duration,
		})
	}

	c.logger.Debug("model call completed",
		zap.String("provider", attrs.Provider),
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens))

	return resp.Content, nil
}

// Model 返回适配器使用的模型标识
func (c *Completer) Model() string {
	return c.model
}
