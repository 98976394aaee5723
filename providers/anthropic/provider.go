package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/internal/tlsutil"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/providers"
	"github.com/BaSui01/schemaflow/types"
)

const (
	defaultBaseURL    = "https://api.anthropic.com"
	defaultAPIVersion = "2023-06-01"
	fallbackModel     = "claude-3-5-sonnet-20241022"
)

// ClaudeProvider 实现 Anthropic Claude 的 Provider 适配.
// Claude API 与 OpenAI 有显著差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 提示单独传递到顶层 system 字段
// 3. 消息 content 为数组形式，响应按 content block 拼接
// 4. max_tokens 为必填字段
type ClaudeProvider struct {
	cfg    providers.AnthropicConfig
	client *http.Client
	logger *zap.Logger
}

// New 创建 Claude Provider 实例.
func New(cfg providers.AnthropicConfig, logger *zap.Logger) *ClaudeProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // Claude 响应可能较慢
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaudeProvider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger,
	}
}

// Name returns the provider identifier.
func (p *ClaudeProvider) Name() string { return "claude" }

// --- Messages API wire types ---

type claudeMessage struct {
	Role    string          `json:"role"` // user 或 assistant
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"` // text
	Text string `json:"text,omitempty"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"` // system 提示单独传递
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      *claudeUsage    `json:"usage,omitempty"`
}

type claudeErrorResp struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// buildHeaders 设置 Claude 专用请求头.
func (p *ClaudeProvider) buildHeaders(req *http.Request) {
	// Claude 使用 x-api-key 认证
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", p.cfg.APIVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// endpoint 拼接完整 URL.
func (p *ClaudeProvider) endpoint(path string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(p.cfg.BaseURL, "/"), path)
}

// chooseMaxTokens Claude 要求必须提供 max_tokens.
func chooseMaxTokens(req *llm.CompletionRequest) int {
	if req != nil && req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return 4096
}

// Complete performs a single non-streaming message completion.
func (p *ClaudeProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	body := claudeRequest{
		Model: providers.ChooseModel(req.Model, p.cfg.Model, fallbackModel),
		Messages: []claudeMessage{{
			Role:    "user",
			Content: []claudeContent{{Type: "text", Text: req.UserPrompt}},
		}},
		System:      req.SystemPrompt,
		MaxTokens:   chooseMaxTokens(req),
		Temperature: req.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/v1/messages"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &types.Error{
			Code: types.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
			Cause: err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readClaudeErrMsg(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var claudeResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&claudeResp); err != nil {
		return nil, &types.Error{
			Code: types.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
			Cause: err,
		}
	}

	// 拼接全部 text content block
	var content strings.Builder
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	result := &llm.CompletionResponse{
		Content:   content.String(),
		Model:     claudeResp.Model,
		CreatedAt: time.Now(),
	}
	if claudeResp.Usage != nil {
		result.Usage = llm.Usage{
			PromptTokens:     claudeResp.Usage.InputTokens,
			CompletionTokens: claudeResp.Usage.OutputTokens,
			TotalTokens:      claudeResp.Usage.InputTokens + claudeResp.Usage.OutputTokens,
		}
	}
	return result, nil
}

// HealthCheck verifies the upstream endpoint is reachable.
func (p *ClaudeProvider) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/v1/models"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readClaudeErrMsg(resp.Body)
		return fmt.Errorf("claude health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return nil
}

// readClaudeErrMsg 解析 Claude 错误响应体，失败时回退原始文本.
func readClaudeErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp claudeErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
	}
	return string(data)
}
