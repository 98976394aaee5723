package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	subjectKey    contextKey = "auth_subject"
	authSchemeKey contextKey = "auth_scheme"
)

// WithSubject 设置认证主体（JWT 的 sub 声明）
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// Subject 获取认证主体
func Subject(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithAuthScheme 设置本次请求通过的认证方式（api_key、jwt）
func WithAuthScheme(ctx context.Context, scheme string) context.Context {
	return context.WithValue(ctx, authSchemeKey, scheme)
}

// AuthScheme 获取认证方式
func AuthScheme(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(authSchemeKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
