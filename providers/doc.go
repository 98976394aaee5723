// Copyright 2026 SchemaFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供跨模型服务商的通用适配与辅助能力，是所有具体 Provider
实现的公共基础层。各服务商子包（openai、anthropic）依赖本包完成错误映射、
模型选择与错误响应解析等共享逻辑。

# 核心类型

  - OpenAIConfig — OpenAI 兼容 Provider 配置（APIKey、BaseURL、Organization、Model、Timeout）
  - AnthropicConfig — Anthropic Provider 配置（APIKey、BaseURL、Model、APIVersion、Timeout）

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 *types.Error（含 Retryable 标记）
  - ReadErrorMessage — 解析上游错误响应体，失败时回退原始文本
  - ChooseModel — 按优先级选择模型（请求 > 配置 > 兜底）

# 支持能力

  - 统一错误语义映射（401/403/429/5xx/529 等）
  - 400 响应的上下文超长与配额耗尽关键字识别
  - 所有传输层错误均携带 Provider 标识，便于日志与指标归因
*/
package providers
