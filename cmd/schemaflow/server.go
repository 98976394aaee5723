package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/api"
	"github.com/BaSui01/schemaflow/api/handlers"
	"github.com/BaSui01/schemaflow/config"
	"github.com/BaSui01/schemaflow/internal/metrics"
	"github.com/BaSui01/schemaflow/internal/server"
	"github.com/BaSui01/schemaflow/internal/telemetry"
	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/providers"
	"github.com/BaSui01/schemaflow/providers/anthropic"
	"github.com/BaSui01/schemaflow/providers/openai"
	"github.com/BaSui01/schemaflow/store"
	"github.com/BaSui01/schemaflow/structured"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 SchemaFlow 的主服务器
type Server struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	level      zap.AtomicLevel

	// 服务器管理器
	httpManager    *server.Manager
	metricsManager *server.Manager

	// Handlers
	healthHandler   *handlers.HealthHandler
	generateHandler *handlers.GenerateHandler
	recordsHandler  *handlers.RecordsHandler

	// 指标收集器
	metricsCollector *metrics.Collector

	// 生成记录存储
	recordStore store.Store

	// 遥测（可能为 noop）
	otelProviders *telemetry.Providers

	// 配置热重载管理器
	reloadManager *config.ReloadManager

	// 后台 goroutine 生命周期管理
	rateLimiterCancel context.CancelFunc
	poolStatsCancel   context.CancelFunc

	wg sync.WaitGroup
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, configPath string, level zap.AtomicLevel, logger *zap.Logger, otelProviders *telemetry.Providers) *Server {
	return &Server{
		cfg:           cfg,
		configPath:    configPath,
		level:         level,
		logger:        logger,
		otelProviders: otelProviders,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动所有服务
func (s *Server) Start() error {
	// 1. 初始化指标收集器
	s.metricsCollector = metrics.NewCollector("schemaflow", s.logger)

	// 2. 初始化生成记录存储
	if err := s.initStore(); err != nil {
		return fmt.Errorf("failed to init record store: %w", err)
	}

	// 3. 初始化 Handlers
	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	// 4. 初始化配置热重载
	if err := s.initReloadManager(); err != nil {
		return fmt.Errorf("failed to init reload manager: %w", err)
	}

	// 5. 启动 HTTP 服务器
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 6. 启动 Metrics 服务器
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// 7. 数据库存储时定期上报连接池指标
	s.startPoolStatsLoop()

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.String("store", s.cfg.Store.Type),
		zap.String("provider", s.cfg.Generation.DefaultProvider),
		zap.Bool("hot_reload_enabled", s.configPath != ""),
	)

	return nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

// initStore 初始化生成记录存储
func (s *Server) initStore() error {
	st, err := store.NewStore(buildStoreConfig(s.cfg), s.logger)
	if err != nil {
		return err
	}
	s.recordStore = st

	s.logger.Info("Record store initialized", zap.String("type", s.cfg.Store.Type))
	return nil
}

// buildStoreConfig 将应用配置映射为存储配置。
// DSN 用于 postgres/mysql，Path 用于 sqlite（Name 字段即文件路径）。
func buildStoreConfig(cfg *config.Config) store.Config {
	return store.Config{
		Type: store.StoreType(cfg.Store.Type),
		Database: store.DatabaseConfig{
			Driver:       cfg.Database.Driver,
			DSN:          cfg.Database.DSN(),
			Path:         cfg.Database.Name,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		},
		Redis: store.RedisConfig{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
		Retention:  cfg.Store.Retention,
		MaxRecords: cfg.Store.MaxRecords,
	}
}

// initHandlers 初始化所有 handlers
func (s *Server) initHandlers() error {
	// 健康检查 handler：存储连通性 + 结果分布计数
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("store", s.recordStore.Ping))
	s.healthHandler.SetOutcomeCounter(s.recordStore.CountByOutcome)

	// 构建模型 Provider 与生成链
	provider, err := s.buildProvider()
	if err != nil {
		return err
	}

	completer := llm.NewCompleter(provider, llm.CompleterConfig{
		Model:       s.cfg.Generation.Model,
		MaxTokens:   s.cfg.Generation.MaxTokens,
		Temperature: s.cfg.Generation.Temperature,
	}, s.logger)

	generator := structured.NewGenerator(completer, s.logger)
	availability := llm.NewHealthAvailability(provider, s.logger)

	s.generateHandler = handlers.NewGenerateHandler(handlers.GenerateHandlerConfig{
		Generator:    generator,
		Availability: availability,
		Store:        s.recordStore,
		Metrics:      s.metricsCollector,
		Provider:     s.cfg.Generation.DefaultProvider,
		Model:        s.cfg.Generation.Model,
	}, s.logger)

	s.recordsHandler = handlers.NewRecordsHandler(s.recordStore, s.logger)

	s.logger.Info("Handlers initialized",
		zap.String("provider", provider.Name()),
		zap.String("model", s.cfg.Generation.Model))
	return nil
}

// buildProvider 根据配置构建模型 Provider。
// API Key 缺失不阻止启动：可用性检查会把这种配置报告为不可用。
func (s *Server) buildProvider() (llm.Provider, error) {
	switch s.cfg.Generation.DefaultProvider {
	case "openai":
		if s.cfg.OpenAI.APIKey == "" {
			s.logger.Warn("OpenAI API key not configured, availability will report unavailable")
		}
		return openai.New(providers.OpenAIConfig{
			APIKey:       s.cfg.OpenAI.APIKey,
			BaseURL:      s.cfg.OpenAI.BaseURL,
			Organization: s.cfg.OpenAI.Organization,
			Model:        s.cfg.Generation.Model,
			Timeout:      s.cfg.OpenAI.Timeout,
		}, s.logger), nil

	case "anthropic":
		if s.cfg.Anthropic.APIKey == "" {
			s.logger.Warn("Anthropic API key not configured, availability will report unavailable")
		}
		return anthropic.New(providers.AnthropicConfig{
			APIKey:     s.cfg.Anthropic.APIKey,
			BaseURL:    s.cfg.Anthropic.BaseURL,
			Model:      s.cfg.Generation.Model,
			APIVersion: s.cfg.Anthropic.APIVersion,
			Timeout:    s.cfg.Anthropic.Timeout,
		}, s.logger), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: openai, anthropic)", s.cfg.Generation.DefaultProvider)
	}
}

// initReloadManager 初始化配置热重载
func (s *Server) initReloadManager() error {
	if s.configPath == "" {
		s.logger.Info("Config hot reload disabled (no config file)")
		return nil
	}

	loader := config.NewLoader().WithConfigPath(s.configPath)
	s.reloadManager = config.NewReloadManager(loader, s.cfg,
		config.WithReloadLogger(s.logger))

	s.reloadManager.OnReload(func(oldConfig, newConfig *config.Config) {
		s.cfg = newConfig

		// 日志级别即时生效，其余运行时字段由各组件按需读取
		if oldConfig.Log.Level != newConfig.Log.Level {
			s.level.SetLevel(parseLogLevel(newConfig.Log.Level))
			s.logger.Info("Log level updated", zap.String("level", newConfig.Log.Level))
		}
	})

	if err := s.reloadManager.Start(context.Background()); err != nil {
		return err
	}

	return nil
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// startHTTPServer 启动 HTTP 服务器
func (s *Server) startHTTPServer() error {
	mux := api.NewRouter(api.RouteSet{
		Generate: api.GenerateRoutes{
			Generate:     s.generateHandler.HandleGenerate,
			Text:         s.generateHandler.HandleGenerateText,
			TextLanguage: s.generateHandler.HandleGenerateTextLanguage,
			Availability: s.generateHandler.HandleAvailability,
		},
		Records: api.RecordRoutes{
			List: s.recordsHandler.HandleList,
			Get:  s.recordsHandler.HandleGet,
		},
		Health: api.HealthRoutes{
			Health:  s.healthHandler.HandleHealth,
			Healthz: s.healthHandler.HandleHealthz,
			Ready:   s.healthHandler.HandleReady,
		},
		Version: s.healthHandler.HandleVersion(Version, BuildTime, GitCommit),
	})

	// ========================================
	// 构建中间件链
	// ========================================
	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		OTelTracing(),
		CORS(s.cfg.Server.CORSOrigins),
		RateLimiter(rateLimiterCtx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	}

	switch s.cfg.Auth.Mode {
	case "api_key":
		middlewares = append(middlewares, APIKeyAuth(s.cfg.Auth.APIKeys, skipAuthPaths, s.logger))
		s.logger.Info("API key authentication enabled")
	case "jwt":
		middlewares = append(middlewares, JWTAuth(s.cfg.Auth.JWTSecret, skipAuthPaths, s.logger))
		s.logger.Info("JWT authentication enabled")
	}

	handler := Chain(mux, middlewares...)

	// ========================================
	// 使用 internal/server.Manager
	// ========================================
	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout, // 2x ReadTimeout
		MaxHeaderBytes:  1 << 20,                      // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	// 启动服务器（非阻塞）
	if s.cfg.Server.TLSCertFile != "" && s.cfg.Server.TLSKeyFile != "" {
		if err := s.httpManager.StartTLS(s.cfg.Server.TLSCertFile, s.cfg.Server.TLSKeyFile); err != nil {
			return err
		}
		s.logger.Info("HTTPS server started", zap.Int("port", s.cfg.Server.HTTPPort))
		return nil
	}

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

// startMetricsServer 启动 Metrics 服务器。
// MetricsPort 为 0 时不启动独立监听。
func (s *Server) startMetricsServer() error {
	if s.cfg.Server.MetricsPort == 0 {
		s.logger.Info("Metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	// 启动服务器（非阻塞）
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// startPoolStatsLoop 定期把数据库连接池状态上报到 Prometheus。
// 仅 database 存储后端有连接池。
func (s *Server) startPoolStatsLoop() {
	dbStore, ok := s.recordStore.(*store.DatabaseStore)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.poolStatsCancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := dbStore.Pool().Stats()
				s.metricsCollector.RecordDBConnections(s.cfg.Database.Name, stats.OpenConnections, stats.Idle)
			}
		}
	}()
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown 阻塞直到收到终止信号或某个服务器异常退出，
// 然后执行优雅关闭。
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// nil channel 永远阻塞，未启动的服务器自然不参与 select
	var httpErrs, metricsErrs <-chan error
	if s.httpManager != nil {
		httpErrs = s.httpManager.Errors()
	}
	if s.metricsManager != nil {
		metricsErrs = s.metricsManager.Errors()
	}

	select {
	case sig := <-quit:
		s.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-httpErrs:
		s.logger.Error("HTTP server failed", zap.Error(err))
	case err := <-metricsErrs:
		s.logger.Error("Metrics server failed", zap.Error(err))
	}

	s.Shutdown()
}

// Shutdown 优雅关闭所有服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	// 0. 停止后台 goroutine
	if s.poolStatsCancel != nil {
		s.poolStatsCancel()
	}
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	// 1. 停止配置热重载
	if s.reloadManager != nil {
		if err := s.reloadManager.Stop(); err != nil {
			s.logger.Error("Reload manager shutdown error", zap.Error(err))
		}
	}

	// 2. 关闭 HTTP 服务器（在途请求先完成）
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. 关闭 Metrics 服务器
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 4. 关闭存储（HTTP 关闭之后，避免丢失在途审计记录）
	if s.recordStore != nil {
		if err := s.recordStore.Close(); err != nil {
			s.logger.Error("Record store close error", zap.Error(err))
		}
	}

	// 5. 刷出遥测数据
	if s.otelProviders != nil {
		if err := s.otelProviders.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	// 6. 等待所有 goroutine 完成
	s.wg.Wait()

	s.logger.Info("Graceful shutdown completed")
}
