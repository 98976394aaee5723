// Copyright 2026 SchemaFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 claude 提供 Anthropic Claude 系列模型的 Provider 适配实现。
Claude API 与 OpenAI 格式有显著差异，本包负责将统一的完成请求
映射到 Anthropic Messages API（/v1/messages），并处理认证、
消息格式与错误语义的协议转换。

# 协议差异

  - 认证使用 x-api-key 请求头（非 Bearer Token），
    附带 anthropic-version 版本头
  - system 提示不进入 messages 数组，单独传递到顶层 system 字段
  - 消息 content 为数组形式，响应按 text block 顺序拼接
  - max_tokens 为必填字段，缺省补 4096
  - 用量以 input_tokens/output_tokens 上报，转换时求和得 TotalTokens

# 错误语义

错误响应体为 {"type":"error","error":{...}} 结构，解析后交由
providers.MapHTTPError 归一；529 过载状态码映射为 MODEL_OVERLOADED。
*/
package claude
