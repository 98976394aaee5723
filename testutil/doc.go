// Copyright 2026 SchemaFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 SchemaFlow 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。所有测试应优先使用此包
中的工具函数和 Mock 实现。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏；断言统一使用 testify

# 子包

  - testutil/mocks: Mock 实现，包括 MockProvider（llm.Provider）、
    MockCompleter（结构化生成器的补全依赖）与
    MockAvailability（llm.AvailabilityChecker），
    均支持 Builder 模式、脚本响应与错误注入

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithResponse("hello")
	resp, err := provider.Complete(ctx, req)
	require.NoError(t, err)
*/
package testutil
