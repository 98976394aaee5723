// Copyright 2026 SchemaFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 openai 提供 OpenAI 及兼容服务的 Provider 适配实现。请求走
Chat Completions API（/v1/chat/completions），system 与 user 提示
分别作为独立消息传递，不使用流式输出。

# 协议要点

  - 认证使用 Authorization: Bearer 请求头，
    可选 OpenAI-Organization 请求头
  - 模型选择优先级：请求 > 配置 > gpt-4o-mini 兜底
  - 健康检查使用 /v1/models

# 错误语义

上游 4xx/5xx 均通过 providers.MapHTTPError 归一为 *types.Error，
网络与解码失败映射为可重试的 UPSTREAM_ERROR。
*/
package openai
