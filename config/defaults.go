// =============================================================================
// 📦 SchemaFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Generation: DefaultGenerationConfig(),
		OpenAI:     DefaultOpenAIConfig(),
		Anthropic:  DefaultAnthropicConfig(),
		Store:      DefaultStoreConfig(),
		Database:   DefaultDatabaseConfig(),
		Redis:      DefaultRedisConfig(),
		Auth:       DefaultAuthConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:    8080,
		MetricsPort: 9091,
		ReadTimeout: 30 * time.Second,
		// 写超时必须覆盖整个生成预算，否则长请求会被截断
		WriteTimeout:    3 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		CORSOrigins:     []string{},
	}
}

// DefaultGenerationConfig 返回默认生成配置
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		DefaultProvider: "openai",
		Model:           "gpt-4o-mini",
		MaxTokens:       4096,
		Temperature:     0,
		Timeout:         2 * time.Minute,
	}
}

// DefaultOpenAIConfig 返回默认 OpenAI 配置
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  "",
		BaseURL: "",
		Timeout: 90 * time.Second,
	}
}

// DefaultAnthropicConfig 返回默认 Anthropic 配置
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		APIKey:     "",
		BaseURL:    "",
		APIVersion: "2023-06-01",
		Timeout:    90 * time.Second,
	}
}

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:       "memory",
		Retention:  24 * time.Hour,
		MaxRecords: 1000,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "schemaflow",
		Password:        "",
		Name:            "schemaflow",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:      "localhost",
		Port:      6379,
		Password:  "",
		DB:        0,
		PoolSize:  10,
		KeyPrefix: "schemaflow:",
	}
}

// DefaultAuthConfig 返回默认认证配置
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Mode:    "none",
		APIKeys: []string{},
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "schemaflow",
		SampleRate:   0.1,
	}
}
