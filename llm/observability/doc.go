// 版权所有 2026 SchemaFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 observability 提供 LLM 调用的可观测性能力，涵盖指标采集与
分布式追踪两大模块。

# 概述

本包基于 OpenTelemetry 标准，为 LLM 请求全生命周期提供统一的
观测手段。从请求发起到响应结束，自动记录延迟、Token 消耗与
错误率，并通过 Span 将每次模型调用挂接到上游请求链路中。

典型使用场景：

  - 实时监控模型调用量、延迟分布与错误率。
  - 按 Provider、Model 维度统计 Token 消耗。
  - 追踪一次结构化生成中初始调用与纠错重试的每一次模型往返。

# 核心接口

  - Metrics：基于 OpenTelemetry Meter 的指标收集器，提供请求计数、
    Token 计数、错误计数、延迟直方图与活跃请求 Gauge 等指标。

# 主要能力

  - 指标采集：请求总量、Token 总量（prompt/completion/total）、
    错误数、请求延迟与单次请求 Token 分布。
  - 分布式追踪：每次模型调用生成 llm.completion Span，携带
    provider、model、token 用量与错误码属性。
*/
package observability
