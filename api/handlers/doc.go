// Copyright (c) SchemaFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 SchemaFlow HTTP API 的请求处理器实现。

# 概述

handlers 包实现了 SchemaFlow 所有 HTTP 端点的请求处理逻辑，
包括结构化生成、纯文本生成、可用性探测、审计记录查询、
健康检查以及统一的响应/错误处理。
所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - GenerateHandler  — 结构化/纯文本生成与可用性探测
  - RecordsHandler   — 审计记录列表与详情查询
  - HealthHandler    — 服务健康检查（/health, /healthz, /ready）
  - Response         — 统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo        — 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter   — 包装 http.ResponseWriter 以捕获状态码
  - HealthCheck      — 可插拔健康检查接口（存储、Provider 等）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteJSON 辅助函数
  - 请求验证：DecodeJSONBody（1 MB 限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（INVALID_JSON/SCHEMA_MISMATCH → 422，
    UNAVAILABLE → 503，NATIVE_ERROR → 502，边界校验 → 400）
  - 可用性前置检查：每次生成请求在任何模型调用前探测一次
  - 审计记录：每次生成写入一条结果记录，失败不影响请求
  - 可扩展健康检查：RegisterCheck 注册自定义 HealthCheck 实现
*/
package handlers
