// Copyright 2026 SchemaFlow Authors
// Use of this source code is governed by the project license.

/*
# 概述

包 structured 是 SchemaFlow 的核心：在不可靠的自由文本模型之上，
产出可靠满足调用方 JSON Schema 的结构化数据。

包内组件按依赖自底向上分层，除 Generator 外全部为纯函数，
无共享可变状态，可跨请求并发复用。

# 核心类型

  - Value       — 解析后 JSON 的带标签联合表示（Null/Bool/Number/String/Array/Object）
  - JSONSchema  — 受限 JSON Schema 子集（object/array/string/number/integer/boolean/null）
  - Generator   — 有界重试状态机，协调 提示构建 → 模型调用 → 解析 → 校验
  - Completer   — Generator 对外的唯一调用接口（系统指令 + 用户指令 → 原始文本）

# 生成流程

	请求 → BuildInitialPrompt → Completer.Complete → ParseResponse → Validate
	     → 成功即返回；失败则以上一轮原始输出与失败原因构建纠正提示，
	       至多重试一次，仍失败则返回带错误码的类型化失败

# 错误语义

  - 解析失败       → INVALID_JSON（剥离一层 Markdown 围栏后仍非合法 JSON）
  - 校验失败       → SCHEMA_MISMATCH（附带首个违约属性或下标的单条消息）
  - 模型调用失败   → NATIVE_ERROR（立即终止，绝不重试）
  - 校验只报首错：深度优先、属性名典序、下标升序，嵌套逐层加前缀

# 主要能力

  - Schema 建模：NewObjectSchema / NewArraySchema 等构造器与链式 Add/With 方法
  - 规范序列化：Canonical 保证同一 Schema 永远产出逐字节相同的文本
  - 围栏剥离：ParseResponse 剥离单层 ```json 围栏并按 JSON 片段解析
  - 顶层标量：片段解析允许顶层为标量、数组或对象
*/
package structured
