// Copyright (c) SchemaFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 SchemaFlow 服务的全局共享类型定义。

# 概述

types 是服务最底层的公共包，不依赖任何内部包，为 structured、llm、
store、api 等上层模块提供统一的类型契约。所有跨包共享的结构体、枚举
和错误码均定义于此，以避免循环依赖。

# 核心类型

  - Message           — 对话消息（Role + Content，仅 system/user 两种角色）
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记

# 错误码约定

生成结果只会携带四种边界错误码：

  - INVALID_JSON    — 模型输出在剥离围栏后仍不是合法 JSON
  - SCHEMA_MISMATCH — 解析成功但不满足调用方给定的 Schema
  - UNAVAILABLE     — 能力预检失败，生成流程未启动
  - NATIVE_ERROR    — 模型调用本身失败，或请求前置条件被违反

Provider 传输层错误码（AUTHENTICATION、RATE_LIMIT 等）仅在进程内部
流转，跨越边界前一律被包装为 NATIVE_ERROR。

# 主要能力

  - 错误工具链：NewError + WithCause / WithHTTPStatus / WithRetryable / WithProvider
  - 错误检查：IsRetryable / GetErrorCode，兼容 errors.Is / errors.As
  - 消息构造：NewSystemMessage / NewUserMessage，Role.Valid 校验
*/
package types
