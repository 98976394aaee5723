// MockAvailability 的可用性检查接口测试模拟实现。
//
// 支持固定错误、逐次脚本错误与自定义检查函数场景。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/schemaflow/llm"
)

// MockAvailability 是 llm.AvailabilityChecker 的模拟实现。
// 默认始终可用，配置错误后 Check 返回该错误。
type MockAvailability struct {
	mu sync.Mutex

	// 响应配置
	err  error
	errs []error

	// 调用记录
	callCount int

	checkFunc func(ctx context.Context) error
}

// NewMockAvailability 创建默认可用的 MockAvailability
func NewMockAvailability() *MockAvailability {
	return &MockAvailability{}
}

// NewUnavailableChecker 创建始终返回指定错误的 MockAvailability
func NewUnavailableChecker(err error) *MockAvailability {
	return NewMockAvailability().WithError(err)
}

// WithError 设置固定检查错误
func (m *MockAvailability) WithError(err error) *MockAvailability {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithErrors 设置逐次脚本错误，耗尽后重复最后一个。
// 条目为 nil 表示该次检查通过。
func (m *MockAvailability) WithErrors(errs ...error) *MockAvailability {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = errs
	return m
}

// WithCheckFunc 设置自定义检查函数
func (m *MockAvailability) WithCheckFunc(fn func(ctx context.Context) error) *MockAvailability {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkFunc = fn
	return m
}

// Check 返回配置的错误，并记录调用
func (m *MockAvailability) Check(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	// 检查是否有预设错误
	if m.err != nil {
		return m.err
	}

	// 使用自定义函数
	if m.checkFunc != nil {
		return m.checkFunc(ctx)
	}

	// 脚本错误优先，耗尽后重复最后一个
	if len(m.errs) > 0 {
		if idx < len(m.errs) {
			return m.errs[idx]
		}
		return m.errs[len(m.errs)-1]
	}

	return nil
}

// GetCallCount 返回调用次数
func (m *MockAvailability) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset 清空调用计数
func (m *MockAvailability) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
}

var _ llm.AvailabilityChecker = (*MockAvailability)(nil)
