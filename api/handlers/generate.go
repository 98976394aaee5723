package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BaSui01/schemaflow/api"
	"github.com/BaSui01/schemaflow/internal/metrics"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/store"
	"github.com/BaSui01/schemaflow/structured"
	"github.com/BaSui01/schemaflow/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🧩 结构化生成 Handler
// =============================================================================

// GenerateHandlerConfig 携带生成处理器的协作对象。
// Store 与 Metrics 可为 nil，nil 时跳过审计与指标记录。
type GenerateHandlerConfig struct {
	Generator    *structured.Generator
	Availability llm.AvailabilityChecker
	Store        store.Store
	Metrics      *metrics.Collector
	// Provider 与 Model 仅用于审计记录与可用性指标标签
	Provider string
	Model    string
}

// GenerateHandler 结构化生成接口处理器
type GenerateHandler struct {
	generator    *structured.Generator
	availability llm.AvailabilityChecker
	store        store.Store
	metrics      *metrics.Collector
	provider     string
	model        string
	logger       *zap.Logger
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(cfg GenerateHandlerConfig, logger *zap.Logger) *GenerateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateHandler{
		generator:    cfg.Generator,
		availability: cfg.Availability,
		store:        cfg.Store,
		metrics:      cfg.Metrics,
		provider:     cfg.Provider,
		model:        cfg.Model,
		logger:       logger,
	}
}

// HandleGenerate 处理结构化生成请求
// @Summary 结构化生成
// @Description 生成一个满足给定 JSON Schema 的值
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body api.GenerateRequest true "生成请求"
// @Success 200 {object} Response "生成的 JSON 值"
// @Failure 400 {object} Response "无效请求"
// @Failure 422 {object} Response "模型输出不合法"
// @Failure 503 {object} Response "模型不可用"
// @Security ApiKeyAuth
// @Router /api/v1/generate [post]
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.GenerateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := validateMessages(req.Messages); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	schema, err := parseSchema(req.Schema)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	start := time.Now()
	if err := h.checkAvailability(r.Context()); err != nil {
		h.finish(w, r, store.OpGenerate, start, nil, err)
		return
	}

	value, genErr := h.generator.Generate(r.Context(), api.ConvertMessages(req.Messages), schema)
	if genErr != nil {
		h.finish(w, r, store.OpGenerate, start, nil, genErr)
		return
	}
	h.finish(w, r, store.OpGenerate, start, value, nil)
}

// HandleGenerateText 处理纯文本生成请求
// @Summary 纯文本生成
// @Description 单次模型调用，原样返回模型文本
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body api.GenerateTextRequest true "文本生成请求"
// @Success 200 {object} Response "生成的文本"
// @Failure 400 {object} Response "无效请求"
// @Failure 503 {object} Response "模型不可用"
// @Security ApiKeyAuth
// @Router /api/v1/generate/text [post]
func (h *GenerateHandler) HandleGenerateText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.GenerateTextRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := validateMessages(req.Messages); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	start := time.Now()
	if err := h.checkAvailability(r.Context()); err != nil {
		h.finish(w, r, store.OpGenerateText, start, nil, err)
		return
	}

	content, genErr := h.generator.GenerateText(r.Context(), api.ConvertMessages(req.Messages))
	if genErr != nil {
		h.finish(w, r, store.OpGenerateText, start, nil, genErr)
		return
	}
	h.finish(w, r, store.OpGenerateText, start, api.TextResult{Content: content}, nil)
}

// HandleGenerateTextLanguage 处理带目标语言的纯文本生成请求
// @Summary 指定语言的纯文本生成
// @Description 单次模型调用，附加目标语言指令
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body api.GenerateTextWithLanguageRequest true "文本生成请求"
// @Success 200 {object} Response "生成的文本"
// @Failure 400 {object} Response "无效请求"
// @Failure 503 {object} Response "模型不可用"
// @Security ApiKeyAuth
// @Router /api/v1/generate/text/language [post]
func (h *GenerateHandler) HandleGenerateTextLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.GenerateTextWithLanguageRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := validateMessages(req.Messages); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if req.Language == "" {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrNativeError, "language is required", h.logger)
		return
	}

	start := time.Now()
	if err := h.checkAvailability(r.Context()); err != nil {
		h.finish(w, r, store.OpGenerateTextLanguage, start, nil, err)
		return
	}

	content, genErr := h.generator.GenerateTextWithLanguage(r.Context(), api.ConvertMessages(req.Messages), req.Language)
	if genErr != nil {
		h.finish(w, r, store.OpGenerateTextLanguage, start, nil, genErr)
		return
	}
	h.finish(w, r, store.OpGenerateTextLanguage, start, api.TextResult{Content: content}, nil)
}

// HandleAvailability 处理可用性查询请求
// @Summary 模型可用性
// @Description 探测后端模型是否可用
// @Tags 生成
// @Produce json
// @Success 200 {object} Response "可用性结果"
// @Security ApiKeyAuth
// @Router /api/v1/availability [get]
func (h *GenerateHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}

	result := api.AvailabilityResult{Available: true}
	if err := h.availability.Check(r.Context()); err != nil {
		result.Available = false
		result.Error = failureMessage(err)
	}
	if h.metrics != nil {
		h.metrics.RecordAvailability(h.provider, result.Available)
	}

	WriteSuccess(w, r, result)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// checkAvailability 在任何模型调用之前探测一次可用性。
// 不可用时返回 UNAVAILABLE 错误，请求被短路。
func (h *GenerateHandler) checkAvailability(ctx context.Context) error {
	err := h.availability.Check(ctx)
	if h.metrics != nil {
		h.metrics.RecordAvailability(h.provider, err == nil)
	}
	return err
}

// finish 收尾一次生成请求：记录指标、写审计记录、输出响应。
func (h *GenerateHandler) finish(w http.ResponseWriter, r *http.Request, operation string, start time.Time, data any, err error) {
	duration := time.Since(start)
	outcome := store.OutcomeForError(err)

	if h.metrics != nil {
		h.metrics.RecordGeneration(operation, outcome, duration)
	}
	h.writeRecord(r, operation, outcome, err, duration)

	h.logger.Info("generation finished",
		zap.String("operation", operation),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	)

	if err != nil {
		h.writeGenerationError(w, r, err)
		return
	}
	WriteSuccess(w, r, data)
}

// writeRecord 写入审计记录。记录失败只告警，不影响请求结果。
func (h *GenerateHandler) writeRecord(r *http.Request, operation, outcome string, genErr error, duration time.Duration) {
	if h.store == nil {
		return
	}

	record := &store.GenerationRecord{
		RequestID:  RequestIDFromContext(r.Context()),
		Operation:  operation,
		Provider:   h.provider,
		Model:      h.model,
		Outcome:    outcome,
		DurationMS: duration.Milliseconds(),
	}
	if genErr != nil {
		record.ErrorMessage = failureMessage(genErr)
	}

	// 客户端断开不应丢失审计行
	ctx := context.WithoutCancel(r.Context())
	if err := h.store.SaveRecord(ctx, record); err != nil {
		h.logger.Warn("failed to save generation record",
			zap.String("operation", operation),
			zap.Error(err))
	}
}

// writeGenerationError 将生成错误写为响应。非类型化错误包装为 NATIVE_ERROR。
func (h *GenerateHandler) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	if typedErr, ok := err.(*types.Error); ok {
		WriteError(w, r, typedErr, h.logger)
		return
	}
	wrapped := types.NewError(types.ErrNativeError, fmt.Sprintf("Generation failed: %v", err)).WithCause(err)
	WriteError(w, r, wrapped, h.logger)
}

// validateMessages 校验边界消息：非空且角色合法。
func validateMessages(messages []api.Message) *types.Error {
	if len(messages) == 0 {
		return types.NewError(types.ErrNativeError, "messages cannot be empty").
			WithHTTPStatus(http.StatusBadRequest)
	}
	for i, m := range messages {
		if !types.Role(m.Role).Valid() {
			return types.NewError(types.ErrNativeError,
				fmt.Sprintf("invalid role at index %d: %q", i, m.Role)).
				WithHTTPStatus(http.StatusBadRequest)
		}
	}
	return nil
}

// parseSchema 解析请求中的 JSON Schema，缺失或不合法时返回 400。
func parseSchema(raw []byte) (*structured.JSONSchema, *types.Error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, types.NewError(types.ErrNativeError, "schema is required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	schema, err := structured.FromJSON(raw)
	if err != nil {
		return nil, types.NewError(types.ErrNativeError, "invalid schema").
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
	}
	if schema.Type == "" {
		return nil, types.NewError(types.ErrNativeError, "schema must declare a type").
			WithHTTPStatus(http.StatusBadRequest)
	}
	return schema, nil
}

// failureMessage 提取错误的可读部分，剥离类型化错误的 [CODE] 前缀。
func failureMessage(err error) string {
	if te, ok := err.(*types.Error); ok {
		return te.Message
	}
	return err.Error()
}
