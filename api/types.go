package api

import (
	"encoding/json"

	"github.com/BaSui01/schemaflow/store"
	"github.com/BaSui01/schemaflow/types"
)

// =============================================================================
// 生成请求类型
// =============================================================================

// Message 代表一条对话消息。
// @Description 对话消息结构
type Message struct {
	// 消息角色（system 或 user）
	Role string `json:"role" example:"user" binding:"required"`
	// 消息内容
	Content string `json:"content" example:"List three colors." binding:"required"`
}

// ToTypes 转换为内部消息类型。
func (m Message) ToTypes() types.Message {
	return types.Message{
		Role:    types.Role(m.Role),
		Content: m.Content,
	}
}

// ConvertMessages 批量转换 API 消息为内部消息类型。
func ConvertMessages(messages []Message) []types.Message {
	result := make([]types.Message, len(messages))
	for i, m := range messages {
		result[i] = m.ToTypes()
	}
	return result
}

// GenerateRequest 代表结构化生成请求。
// @Description 结构化生成请求结构
type GenerateRequest struct {
	// 对话消息
	Messages []Message `json:"messages" binding:"required"`
	// 生成结果必须满足的 JSON Schema
	Schema json.RawMessage `json:"schema" binding:"required"`
}

// GenerateTextRequest 代表纯文本生成请求。
// @Description 纯文本生成请求结构
type GenerateTextRequest struct {
	// 对话消息
	Messages []Message `json:"messages" binding:"required"`
}

// GenerateTextWithLanguageRequest 代表带目标语言的纯文本生成请求。
// @Description 带目标语言的纯文本生成请求结构
type GenerateTextWithLanguageRequest struct {
	// 对话消息
	Messages []Message `json:"messages" binding:"required"`
	// 目标响应语言（例如 English、French、中文）
	Language string `json:"language" example:"French" binding:"required"`
}

// =============================================================================
// 生成响应类型
// =============================================================================

// TextResult 代表纯文本生成结果。
// @Description 纯文本生成结果结构
type TextResult struct {
	// 模型返回的原始文本
	Content string `json:"content" example:"Red, green and blue."`
}

// AvailabilityResult 代表模型可用性探测结果。
// @Description 可用性探测结果结构
type AvailabilityResult struct {
	// 模型是否可用
	Available bool `json:"available" example:"true"`
	// 不可用时的原因
	Error string `json:"error,omitempty" example:"connection refused"`
}

// =============================================================================
// 审计记录类型
// =============================================================================

// RecordList 代表审计记录列表结果。
// @Description 审计记录列表结构
type RecordList struct {
	// 记录列表，按时间倒序
	Records []*store.GenerationRecord `json:"records"`
	// 返回的记录数量
	Count int `json:"count" example:"42"`
}
