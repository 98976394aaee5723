package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/store"
	"github.com/BaSui01/schemaflow/structured"
	"github.com/BaSui01/schemaflow/testutil/mocks"
	"github.com/BaSui01/schemaflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 生成 Handler 测试
// =============================================================================

const personSchema = `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

// generateFixture 组装一个带内存存储的生成处理器
type generateFixture struct {
	completer *mocks.MockCompleter
	store     *store.MemoryStore
	handler   *GenerateHandler
}

func newGenerateFixture(t *testing.T, completer *mocks.MockCompleter, healthErr error) *generateFixture {
	t.Helper()
	logger := zap.NewNop()

	provider := mocks.NewMockProvider().WithName("mock")
	if healthErr != nil {
		provider = provider.WithHealthError(healthErr)
	}

	st := store.NewMemoryStore(store.DefaultConfig())
	t.Cleanup(func() { st.Close() })

	handler := NewGenerateHandler(GenerateHandlerConfig{
		Generator:    structured.NewGenerator(completer, logger),
		Availability: llm.NewHealthAvailability(provider, logger),
		Store:        st,
		Provider:     "mock",
		Model:        "mock-model",
	}, logger)

	return &generateFixture{
		completer: completer,
		store:     st,
		handler:   handler,
	}
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	handler(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (f *generateFixture) records(t *testing.T) []*store.GenerationRecord {
	t.Helper()
	records, err := f.store.ListRecords(context.Background(), store.RecordQuery{})
	require.NoError(t, err)
	return records
}

// --- 结构化生成 ---

func TestGenerateHandler_Success(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), nil)

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", data["name"])

	assert.Equal(t, 1, f.completer.GetCallCount())
}

func TestGenerateHandler_CorrectionSucceeds(t *testing.T) {
	// 第一次响应缺少必填属性，第二次修正
	f := newGenerateFixture(t, mocks.NewScriptedCompleter(`{"wrong":true}`, `{"name":"Bob"}`), nil)

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bob", data["name"])

	assert.Equal(t, 2, f.completer.GetCallCount())
}

func TestGenerateHandler_SchemaMismatch(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"wrong":true}`), nil)

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrSchemaMismatch), resp.Error.Code)

	// 重试预算：初始调用 + 一次修正，从不更多
	assert.Equal(t, 2, f.completer.GetCallCount())

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, store.OutcomeSchemaMismatch, records[0].Outcome)
}

func TestGenerateHandler_InvalidJSON(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`not json at all`), nil)

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrInvalidJSON), resp.Error.Code)
	assert.Equal(t, 2, f.completer.GetCallCount())
}

func TestGenerateHandler_ModelError(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewErrorCompleter(errors.New("connection reset")), nil)

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrNativeError), resp.Error.Code)

	// 模型调用失败立即终止，从不重试
	assert.Equal(t, 1, f.completer.GetCallCount())
}

func TestGenerateHandler_Unavailable(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), errors.New("connection refused"))

	w := postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrUnavailable), resp.Error.Code)

	// 不可用时短路，不触发任何模型调用
	assert.Equal(t, 0, f.completer.GetCallCount())

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, store.OutcomeUnavailable, records[0].Outcome)
}

func TestGenerateHandler_AvailabilityRecovery(t *testing.T) {
	// 检查器按脚本先失败后恢复，每个请求恰好消耗一次检查
	completer := mocks.NewSuccessCompleter(`{"name":"Alice"}`)
	availability := mocks.NewMockAvailability().
		WithErrors(types.NewError(types.ErrUnavailable, "Model unavailable: probe timeout"), nil)

	handler := NewGenerateHandler(GenerateHandlerConfig{
		Generator:    structured.NewGenerator(completer, zap.NewNop()),
		Availability: availability,
	}, zap.NewNop())

	body := `{"messages":[{"role":"user","content":"Give me a person."}],"schema":` + personSchema + `}`

	w := postJSON(handler.HandleGenerate, "/api/v1/generate", body)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, completer.GetCallCount())

	w = postJSON(handler.HandleGenerate, "/api/v1/generate", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, completer.GetCallCount())

	assert.Equal(t, 2, availability.GetCallCount())
}

func TestGenerateHandler_BoundaryValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "empty messages",
			body:    `{"messages":[],"schema":` + personSchema + `}`,
			wantMsg: "messages cannot be empty",
		},
		{
			name:    "invalid role",
			body:    `{"messages":[{"role":"assistant","content":"hi"}],"schema":` + personSchema + `}`,
			wantMsg: "invalid role",
		},
		{
			name:    "missing schema",
			body:    `{"messages":[{"role":"user","content":"hi"}]}`,
			wantMsg: "schema is required",
		},
		{
			name:    "null schema",
			body:    `{"messages":[{"role":"user","content":"hi"}],"schema":null}`,
			wantMsg: "schema is required",
		},
		{
			name:    "schema without type",
			body:    `{"messages":[{"role":"user","content":"hi"}],"schema":{"required":["a"]}}`,
			wantMsg: "schema must declare a type",
		},
		{
			name:    "unknown field",
			body:    `{"messages":[{"role":"user","content":"hi"}],"schema":` + personSchema + `,"extra":1}`,
			wantMsg: "invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), nil)

			w := postJSON(f.handler.HandleGenerate, "/api/v1/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(types.ErrNativeError), resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)

			// 边界拒绝从不触发模型调用，也不产生审计记录
			assert.Equal(t, 0, f.completer.GetCallCount())
			assert.Empty(t, f.records(t))
		})
	}
}

func TestGenerateHandler_MethodNotAllowed(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
	f.handler.HandleGenerate(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGenerateHandler_WrongContentType(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "text/plain")
	f.handler.HandleGenerate(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateHandler_AuditRecord(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`{"name":"Alice"}`), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/generate",
		strings.NewReader(`{"messages":[{"role":"user","content":"Give me a person."}],"schema":`+personSchema+`}`))
	r.Header.Set("Content-Type", "application/json")
	r = r.WithContext(WithRequestID(r.Context(), "req-7"))
	f.handler.HandleGenerate(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	records := f.records(t)
	require.Len(t, records, 1)
	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "req-7", rec.RequestID)
	assert.Equal(t, store.OpGenerate, rec.Operation)
	assert.Equal(t, "mock", rec.Provider)
	assert.Equal(t, "mock-model", rec.Model)
	assert.Equal(t, store.OutcomeSuccess, rec.Outcome)
	assert.Empty(t, rec.ErrorMessage)
	assert.GreaterOrEqual(t, rec.DurationMS, int64(0))
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGenerateHandler_ErrorMessageRecorded(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter(`not json`), nil)

	postJSON(f.handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"hi"}],"schema":`+personSchema+`}`)

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, store.OutcomeInvalidJSON, records[0].Outcome)
	assert.NotEmpty(t, records[0].ErrorMessage)
	// 审计消息不携带 [CODE] 前缀
	assert.NotContains(t, records[0].ErrorMessage, "[INVALID_JSON]")
}

func TestGenerateHandler_NilStoreAndMetrics(t *testing.T) {
	completer := mocks.NewSuccessCompleter(`{"name":"Alice"}`)
	handler := NewGenerateHandler(GenerateHandlerConfig{
		Generator:    structured.NewGenerator(completer, zap.NewNop()),
		Availability: llm.NewHealthAvailability(mocks.NewMockProvider(), zap.NewNop()),
	}, nil)

	w := postJSON(handler.HandleGenerate, "/api/v1/generate",
		`{"messages":[{"role":"user","content":"hi"}],"schema":`+personSchema+`}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- 纯文本生成 ---

func TestGenerateText_Success(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("Red, green and blue."), nil)

	w := postJSON(f.handler.HandleGenerateText, "/api/v1/generate/text",
		`{"messages":[{"role":"user","content":"List three colors."}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Red, green and blue.", data["content"])

	// 纯文本路径恰好一次模型调用
	assert.Equal(t, 1, f.completer.GetCallCount())

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, store.OpGenerateText, records[0].Operation)
}

func TestGenerateText_ModelError(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewErrorCompleter(errors.New("boom")), nil)

	w := postJSON(f.handler.HandleGenerateText, "/api/v1/generate/text",
		`{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrNativeError), resp.Error.Code)
	assert.Equal(t, 1, f.completer.GetCallCount())
}

func TestGenerateText_EmptyMessages(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("hi"), nil)

	w := postJSON(f.handler.HandleGenerateText, "/api/v1/generate/text", `{"messages":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateText_Unavailable(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("hi"), errors.New("down"))

	w := postJSON(f.handler.HandleGenerateText, "/api/v1/generate/text",
		`{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, f.completer.GetCallCount())
}

// --- 指定语言的纯文本生成 ---

func TestGenerateTextLanguage_Success(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("Rouge, vert et bleu."), nil)

	w := postJSON(f.handler.HandleGenerateTextLanguage, "/api/v1/generate/text/language",
		`{"messages":[{"role":"user","content":"List three colors."}],"language":"French"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Rouge, vert et bleu.", data["content"])

	// 语言指令附加到系统提示
	last := f.completer.GetLastCall()
	require.NotNil(t, last)
	assert.Contains(t, last.SystemPrompt, "Please respond in French.")
}

func TestGenerateTextLanguage_MissingLanguage(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("hi"), nil)

	w := postJSON(f.handler.HandleGenerateTextLanguage, "/api/v1/generate/text/language",
		`{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "language is required")
}

// --- 可用性端点 ---

func TestHandleAvailability_Available(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("{}"), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	f.handler.HandleAvailability(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["available"])
	_, hasError := data["error"]
	assert.False(t, hasError)
}

func TestHandleAvailability_Unavailable(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("{}"), errors.New("connection refused"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	f.handler.HandleAvailability(w, r)

	// 查询端点报告状态，而非失败
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["available"])
	assert.Contains(t, data["error"], "connection refused")
}

func TestHandleAvailability_MethodNotAllowed(t *testing.T) {
	f := newGenerateFixture(t, mocks.NewSuccessCompleter("{}"), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/availability", nil)
	f.handler.HandleAvailability(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
