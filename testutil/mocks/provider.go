// MockProvider 的 LLM 提供商测试模拟实现。
//
// 支持固定响应、逐次脚本响应、健康状态与错误注入场景。
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/schemaflow/llm"
)

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Request  *llm.CompletionRequest
	Response *llm.CompletionResponse
	Error    error
}

// MockProvider 是 llm.Provider 的模拟实现
type MockProvider struct {
	mu sync.Mutex

	// 响应配置
	name      string
	response  string
	responses []string
	err       error
	healthErr error

	// Token 使用统计
	promptTokens     int
	completionTokens int

	// 调用记录
	calls        []MockProviderCall
	completeFunc func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)

	// 行为控制
	delay     time.Duration
	failAfter int
	callCount int
}

// NewMockProvider 创建新的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:             "mock",
		response:         "Mock response",
		calls:            []MockProviderCall{},
		promptTokens:     10,
		completionTokens: 20,
	}
}

// WithName 设置 Provider 名称
func (m *MockProvider) WithName(name string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithResponse 设置固定响应内容
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithResponses 设置逐次脚本响应，耗尽后重复最后一个
func (m *MockProvider) WithResponses(responses ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithError 设置返回错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithHealthError 设置健康检查错误
func (m *MockProvider) WithHealthError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthErr = err
	return m
}

// WithTokenUsage 设置 Token 使用量
func (m *MockProvider) WithTokenUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay 设置响应延迟
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *MockProvider) WithFailAfter(n int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// WithCompleteFunc 设置自定义 Complete 函数
func (m *MockProvider) WithCompleteFunc(fn func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Name 返回 Provider 名称
func (m *MockProvider) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// HealthCheck 执行健康检查
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = ctx
	return m.healthErr
}

// Complete 生成响应
func (m *MockProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}

	// 检查是否应该失败
	if m.failAfter > 0 && m.callCount > m.failAfter {
		err := errors.New("mock provider: configured to fail after N calls")
		m.calls = append(m.calls, MockProviderCall{Request: req, Error: err})
		return nil, err
	}

	// 检查是否有预设错误
	if m.err != nil {
		m.calls = append(m.calls, MockProviderCall{Request: req, Error: m.err})
		return nil, m.err
	}

	// 使用自定义函数
	if m.completeFunc != nil {
		resp, err := m.completeFunc(ctx, req)
		m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
		return resp, err
	}

	// 脚本响应优先，耗尽后重复最后一个
	content := m.response
	if len(m.responses) > 0 {
		if idx < len(m.responses) {
			content = m.responses[idx]
		} else {
			content = m.responses[len(m.responses)-1]
		}
	}

	resp := &llm.CompletionResponse{
		Content: content,
		Model:   req.Model,
		Usage: llm.Usage{
			PromptTokens:     m.promptTokens,
			CompletionTokens: m.completionTokens,
			TotalTokens:      m.promptTokens + m.completionTokens,
		},
		CreatedAt: time.Now(),
	}

	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp})
	return resp, nil
}

// GetCalls 返回所有调用记录
func (m *MockProvider) GetCalls() []MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockProviderCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallCount 返回调用次数
func (m *MockProvider) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GetLastCall 返回最后一次调用记录
func (m *MockProvider) GetLastCall() *MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset 清空调用记录与计数
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = []MockProviderCall{}
	m.callCount = 0
}

var _ llm.Provider = (*MockProvider)(nil)
