package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/BaSui01/schemaflow/api"
	"github.com/BaSui01/schemaflow/store"
	"github.com/BaSui01/schemaflow/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🗂️ 审计记录 Handler
// =============================================================================

// RecordsHandler 审计记录查询处理器
type RecordsHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewRecordsHandler 创建审计记录处理器
func NewRecordsHandler(st store.Store, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{
		store:  st,
		logger: logger,
	}
}

// HandleList 处理记录列表请求
// @Summary 审计记录列表
// @Description 按时间倒序返回最近的生成记录，支持 operation、outcome、limit 过滤
// @Tags 审计
// @Produce json
// @Param operation query string false "按操作名过滤"
// @Param outcome query string false "按结果标签过滤"
// @Param limit query int false "返回数量上限"
// @Success 200 {object} Response "记录列表"
// @Failure 400 {object} Response "无效请求"
// @Security ApiKeyAuth
// @Router /api/v1/generations [get]
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}

	query := store.RecordQuery{
		Operation: r.URL.Query().Get("operation"),
		Outcome:   r.URL.Query().Get("outcome"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrNativeError, "invalid limit", h.logger)
			return
		}
		query.Limit = limit
	}

	records, err := h.store.ListRecords(r.Context(), query)
	if err != nil {
		apiErr := types.NewError(types.ErrNativeError, "failed to list records").
			WithCause(err).
			WithHTTPStatus(http.StatusInternalServerError)
		WriteError(w, r, apiErr, h.logger)
		return
	}

	WriteSuccess(w, r, api.RecordList{
		Records: records,
		Count:   len(records),
	})
}

// HandleGet 处理单条记录查询请求
// @Summary 审计记录详情
// @Description 按 ID 返回单条生成记录
// @Tags 审计
// @Produce json
// @Param id path string true "记录 ID"
// @Success 200 {object} Response "记录详情"
// @Failure 404 {object} Response "记录不存在"
// @Security ApiKeyAuth
// @Router /api/v1/generations/{id} [get]
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrNativeError, "method not allowed", h.logger)
		return
	}

	id, ok := extractRecordID(r)
	if !ok {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrNativeError, "record id is required", h.logger)
		return
	}

	record, err := h.store.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteErrorMessage(w, r, http.StatusNotFound, types.ErrNotFound, "record not found", h.logger)
			return
		}
		apiErr := types.NewError(types.ErrNativeError, "failed to get record").
			WithCause(err).
			WithHTTPStatus(http.StatusInternalServerError)
		WriteError(w, r, apiErr, h.logger)
		return
	}

	WriteSuccess(w, r, record)
}

// extractRecordID 从请求中提取记录 ID（Go 1.22+ PathValue 优先，回退到路径解析）
func extractRecordID(r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 4 {
			return "", false
		}
		id = parts[3]
	}
	if id == "" {
		return "", false
	}
	return id, true
}
