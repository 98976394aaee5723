package api

import "net/http"

// RouteSet 聚合路由器需要的各个处理器。
// 处理器为具体类型以保持装配清晰；中间件由调用方包裹在整个 mux 外层。
type RouteSet struct {
	// Generate 处理 /api/v1/generate* 与 /api/v1/availability
	Generate GenerateRoutes
	// Records 处理 /api/v1/generations*
	Records RecordRoutes
	// Health 处理 /health、/healthz、/ready、/readyz
	Health HealthRoutes
	// Version 处理 /version
	Version http.HandlerFunc
}

// GenerateRoutes 生成端点的处理函数集合。
type GenerateRoutes struct {
	Generate     http.HandlerFunc
	Text         http.HandlerFunc
	TextLanguage http.HandlerFunc
	Availability http.HandlerFunc
}

// RecordRoutes 审计端点的处理函数集合。
type RecordRoutes struct {
	List http.HandlerFunc
	Get  http.HandlerFunc
}

// HealthRoutes 健康端点的处理函数集合。
type HealthRoutes struct {
	Health  http.HandlerFunc
	Healthz http.HandlerFunc
	Ready   http.HandlerFunc
}

// NewRouter 构建服务的主路由。
// 方法检查在各 Handler 内部完成，路由只负责路径到处理器的映射。
func NewRouter(routes RouteSet) *http.ServeMux {
	mux := http.NewServeMux()

	// 健康检查端点
	if routes.Health.Health != nil {
		mux.HandleFunc("/health", routes.Health.Health)
	}
	if routes.Health.Healthz != nil {
		mux.HandleFunc("/healthz", routes.Health.Healthz)
	}
	if routes.Health.Ready != nil {
		mux.HandleFunc("/ready", routes.Health.Ready)
		mux.HandleFunc("/readyz", routes.Health.Ready)
	}

	// 版本信息
	if routes.Version != nil {
		mux.HandleFunc("/version", routes.Version)
	}

	// 生成端点
	if routes.Generate.Generate != nil {
		mux.HandleFunc("/api/v1/generate", routes.Generate.Generate)
	}
	if routes.Generate.Text != nil {
		mux.HandleFunc("/api/v1/generate/text", routes.Generate.Text)
	}
	if routes.Generate.TextLanguage != nil {
		mux.HandleFunc("/api/v1/generate/text/language", routes.Generate.TextLanguage)
	}
	if routes.Generate.Availability != nil {
		mux.HandleFunc("/api/v1/availability", routes.Generate.Availability)
	}

	// 审计端点
	if routes.Records.List != nil {
		mux.HandleFunc("/api/v1/generations", routes.Records.List)
	}
	if routes.Records.Get != nil {
		mux.HandleFunc("/api/v1/generations/{id}", routes.Records.Get)
	}

	return mux
}
