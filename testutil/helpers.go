// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供测试用的上下文构造辅助。断言统一使用 testify，
// 此处不再重复实现。
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	_, err := gen.Generate(testutil.CancelledContext(), messages, schema)
// =============================================================================
package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTestTimeout bounds a single test's blocking calls.
const DefaultTestTimeout = 30 * time.Second

// TestContext 返回带默认超时的测试上下文，随测试结束自动取消
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, DefaultTestTimeout)
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文，
// 用于验证调用方在上下文取消后不再发起模型调用
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
