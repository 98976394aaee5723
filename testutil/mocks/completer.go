// MockCompleter 的补全接口测试模拟实现。
//
// 支持固定响应、逐次脚本响应与错误注入场景。
package mocks

import (
	"context"
	"sync"
)

// MockCompleterCall 记录单次补全调用
type MockCompleterCall struct {
	SystemPrompt string
	UserPrompt   string
	Response     string
	Err          error
}

// MockCompleter 是结构化生成器所依赖补全接口的模拟实现。
// 方法集与 structured.Completer 保持一致，便于直接注入。
type MockCompleter struct {
	mu sync.Mutex

	// 响应配置
	response  string
	responses []string
	err       error

	// 调用记录
	calls     []MockCompleterCall
	callCount int

	completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewMockCompleter 创建新的 MockCompleter
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		response: "{}",
		calls:    []MockCompleterCall{},
	}
}

// NewSuccessCompleter 创建始终返回固定文本的 MockCompleter
func NewSuccessCompleter(response string) *MockCompleter {
	return NewMockCompleter().WithResponse(response)
}

// NewErrorCompleter 创建始终返回错误的 MockCompleter
func NewErrorCompleter(err error) *MockCompleter {
	return NewMockCompleter().WithError(err)
}

// NewScriptedCompleter 创建按调用次序返回脚本响应的 MockCompleter。
// 脚本耗尽后重复返回最后一个响应。
func NewScriptedCompleter(responses ...string) *MockCompleter {
	return NewMockCompleter().WithResponses(responses...)
}

// WithResponse 设置固定响应内容
func (m *MockCompleter) WithResponse(response string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithResponses 设置逐次脚本响应
func (m *MockCompleter) WithResponses(responses ...string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithError 设置返回错误
func (m *MockCompleter) WithError(err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc 设置自定义补全函数
func (m *MockCompleter) WithCompleteFunc(fn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Complete 返回配置的响应或错误，并记录调用
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	// 检查是否有预设错误
	if m.err != nil {
		m.calls = append(m.calls, MockCompleterCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Err: m.err})
		return "", m.err
	}

	// 使用自定义函数
	if m.completeFunc != nil {
		resp, err := m.completeFunc(ctx, systemPrompt, userPrompt)
		m.calls = append(m.calls, MockCompleterCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Response: resp, Err: err})
		return resp, err
	}

	// 脚本响应优先，耗尽后重复最后一个
	resp := m.response
	if len(m.responses) > 0 {
		if idx < len(m.responses) {
			resp = m.responses[idx]
		} else {
			resp = m.responses[len(m.responses)-1]
		}
	}

	m.calls = append(m.calls, MockCompleterCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Response: resp})
	return resp, nil
}

// GetCalls 返回所有调用记录
func (m *MockCompleter) GetCalls() []MockCompleterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCompleterCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallCount 返回调用次数
func (m *MockCompleter) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GetLastCall 返回最后一次调用记录
func (m *MockCompleter) GetLastCall() *MockCompleterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset 清空调用记录与计数
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = []MockCompleterCall{}
	m.callCount = 0
}
