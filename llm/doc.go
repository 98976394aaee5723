// 版权所有 2026 SchemaFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供统一的大语言模型接入层，包括 Provider 抽象、
补全适配、可用性探测与 Token 计数等能力。

# 概述

本包目标是屏蔽不同模型服务商在接口、鉴权和错误语义上的差异，
对上层的结构化生成流程暴露一致的请求与响应模型，降低多模型
接入和切换成本。

你可以使用它完成以下典型场景：

- 单一 Provider 的快速接入与调用。
- 将 Provider 适配为「system + user 提示进、原始文本出」的补全接口。
- 生成前的模型可用性探测，并发探测自动合并。
- 基于 tiktoken 的本地 Token 计数与用量观测。

# Provider 抽象

核心接口是 [Provider]，包含补全、健康检查与名称声明。
基于该接口，系统可以在保持上层调用不变的前提下切换底层模型服务。

# 核心接口

  - [Provider]：LLM 提供者接口，提供 Complete / HealthCheck / Name
  - [AvailabilityChecker]：可用性探测接口，提供 Check
  - [TokenCounter]：Token 计数接口，提供 Count / Name

# 核心类型

  - [CompletionRequest] / [CompletionResponse]：补全请求与响应
  - [Usage]：Token 用量统计
  - [Completer]：补全适配器，附带追踪、指标与 Token 核算
  - [HealthAvailability]：基于健康检查的可用性探测器
  - [TiktokenCounter] / [EstimateCounter]：精确与估算两种计数实现

# 错误语义

Provider 实现将上游 HTTP 状态映射为 [types.Error] 的传输层错误码；
可用性探测失败统一返回 UNAVAILABLE。补全适配器不做重试，
重试策略由上层的结构化生成器负责。
*/
package llm
