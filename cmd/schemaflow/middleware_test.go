package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/api/handlers"
	"github.com/BaSui01/schemaflow/internal/ctxkeys"
)

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := SecurityHeaders()(inner)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeaders_ChainedWithOtherMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	handler := Chain(inner, SecurityHeaders(), RequestID())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	// SecurityHeaders should be present
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	// RequestID should also be present
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_PreservesInboundID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = handlers.RequestIDFromContext(r.Context())
	})

	handler := RequestID()(inner)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-fixed")
	handler.ServeHTTP(w, r)

	assert.Equal(t, "req-fixed", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-fixed", seen, "handlers see the same ID the client sent")
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = handlers.RequestIDFromContext(r.Context())
	})

	handler := RequestID()(inner)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(w, r)

	id := w.Header().Get("X-Request-ID")
	assert.True(t, strings.HasPrefix(id, "req-"))
	assert.Equal(t, id, seen)
}

func TestRecovery(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := Recovery(zap.NewNop())(inner)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "NATIVE_ERROR")
}

func TestAPIKeyAuth(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIKeyAuth([]string{"secret-key"}, []string{"/health"}, zap.NewNop())(inner)

	tests := []struct {
		name       string
		path       string
		key        string
		wantStatus int
	}{
		{"valid key", "/api/v1/generate", "secret-key", http.StatusOK},
		{"missing key", "/api/v1/generate", "", http.StatusUnauthorized},
		{"wrong key", "/api/v1/generate", "nope", http.StatusUnauthorized},
		{"skip path needs no key", "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				r.Header.Set("X-API-Key", tt.key)
			}
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "AUTHENTICATION")
			}
		})
	}
}

func TestJWTAuth(t *testing.T) {
	const secret = "unit-test-secret"

	signedToken := func(t *testing.T, key string) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "svc-reporting",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := token.SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}

	var subject string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = ctxkeys.Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTAuth(secret, []string{"/health"}, zap.NewNop())(inner)

	t.Run("valid token", func(t *testing.T) {
		subject = ""
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, secret))
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "svc-reporting", subject)
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, "other-secret"))
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTHENTICATION")
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/health", nil)
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimiter(ctx, 1, 1, zap.NewNop())(inner)

	// 突发容量 1：第一个请求通过，同一 IP 紧随的第二个被限流
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Contains(t, w2.Body.String(), "RATE_LIMIT")
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no origins configured rejects preflight", func(t *testing.T) {
		handler := CORS(nil)(inner)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		r.Header.Set("Origin", "https://evil.example")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin gets headers", func(t *testing.T) {
		handler := CORS([]string{"https://app.example"})(inner)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://app.example")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed preflight returns 204", func(t *testing.T) {
		handler := CORS([]string{"https://app.example"})(inner)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		r.Header.Set("Origin", "https://app.example")
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/generate", "/api/v1/generate"},
		{"/api/v1/generate/text/language", "/api/v1/generate/text/language"},
		{"/api/v1/generations", "/api/v1/generations"},
		{"/api/v1/generations/3f2c1ab4-9d2e-4f1a-b6c7-0d8e9f0a1b2c", "/api/v1/generations/:id"},
		{"/api/v1/generations/12345", "/api/v1/generations/:id"},
		{"/api/v1/generations/not-an-id", "/api/v1/generations/not-an-id"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path), "path %s", tt.path)
	}
}
