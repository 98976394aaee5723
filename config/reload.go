// 配置热重载管理器实现。
//
// 配置文件变更后重新执行完整加载链，校验通过才替换当前配置。
package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// --- 热重载类型定义 ---

// ReloadCallback 配置替换成功后调用
type ReloadCallback func(oldConfig, newConfig *Config)

// ConfigChange 代表一次字段级配置变更
type ConfigChange struct {
	// 变更的时间戳
	Timestamp time.Time `json:"timestamp"`

	// 变更来源（file、manual）
	Source string `json:"source"`

	// 变更字段的路径（例如 "Log.Level"）
	Path string `json:"path"`

	// 变更前的值（敏感字段会被脱敏）
	OldValue any `json:"old_value,omitempty"`

	// 变更后的值（敏感字段会被脱敏）
	NewValue any `json:"new_value,omitempty"`

	// RequiresRestart 指示此变更需要重启才能完全生效
	RequiresRestart bool `json:"requires_restart"`
}

// fieldPolicy 描述一个配置字段的重载策略
type fieldPolicy struct {
	// RequiresRestart 为 false 时字段变更即时生效
	RequiresRestart bool
	// Sensitive 为 true 时变更记录中的值会被脱敏
	Sensitive bool
}

// fieldPolicies 登记已知字段的重载策略。
// 未登记的字段按需要重启处理。
var fieldPolicies = map[string]fieldPolicy{
	// 日志配置 - 运行时重载
	"Log.Level":  {},
	"Log.Format": {},

	// 生成配置 - 运行时重载
	"Generation.Model":       {},
	"Generation.MaxTokens":   {},
	"Generation.Temperature": {},
	"Generation.Timeout":     {},

	// 遥测采样率 - 运行时重载
	"Telemetry.SampleRate": {},

	// 服务器配置 - 需要重启
	"Server.HTTPPort":     {RequiresRestart: true},
	"Server.MetricsPort":  {RequiresRestart: true},
	"Server.ReadTimeout":  {RequiresRestart: true},
	"Server.WriteTimeout": {RequiresRestart: true},
	"Server.TLSCertFile":  {RequiresRestart: true},
	"Server.TLSKeyFile":   {RequiresRestart: true},

	// 存储配置 - 需要重启
	"Store.Type":        {RequiresRestart: true},
	"Database.Host":     {RequiresRestart: true},
	"Database.Port":     {RequiresRestart: true},
	"Database.Password": {RequiresRestart: true, Sensitive: true},
	"Redis.Host":        {RequiresRestart: true},
	"Redis.Password":    {RequiresRestart: true, Sensitive: true},

	// 凭证 - 需要重启
	"OpenAI.APIKey":    {RequiresRestart: true, Sensitive: true},
	"Anthropic.APIKey": {RequiresRestart: true, Sensitive: true},
	"Auth.Mode":        {RequiresRestart: true},
	"Auth.JWTSecret":   {RequiresRestart: true, Sensitive: true},
}

const (
	redactedValue     = "[REDACTED]"
	maxChangeLogSize  = 100
	reloadSourceFile  = "file"
	reloadSourceLocal = "manual"
)

// --- 热重载管理器 ---

// ReloadManager 监听配置文件并在变更后原子替换当前配置。
// 替换前会重新执行完整加载链（默认值 → YAML → 环境变量 → 验证器），
// 失败时保留旧配置。
type ReloadManager struct {
	mu sync.RWMutex

	loader      *Loader
	config      *Config
	watcher     *FileWatcher
	watcherOpts []WatcherOption

	callbacks []ReloadCallback
	changeLog []ConfigChange

	logger  *zap.Logger
	running bool
}

// ReloadOption 配置 ReloadManager
type ReloadOption func(*ReloadManager)

// WithReloadLogger 设置记录器
func WithReloadLogger(logger *zap.Logger) ReloadOption {
	return func(m *ReloadManager) {
		m.logger = logger
	}
}

// WithReloadWatcherOptions 设置底层文件监听器的选项
func WithReloadWatcherOptions(opts ...WatcherOption) ReloadOption {
	return func(m *ReloadManager) {
		m.watcherOpts = opts
	}
}

// NewReloadManager 创建热重载管理器。
// initial 是已经加载完成的当前配置，loader 决定重载时的加载链。
func NewReloadManager(loader *Loader, initial *Config, opts ...ReloadOption) *ReloadManager {
	m := &ReloadManager{
		loader:    loader,
		config:    initial,
		callbacks: make([]ReloadCallback, 0),
		changeLog: make([]ConfigChange, 0, 16),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// OnReload 注册配置替换成功后的回调
func (m *ReloadManager) OnReload(cb ReloadCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// Current 返回当前配置。
// 返回的指针指向只读快照，重载时整体替换而不是就地修改。
func (m *ReloadManager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Start 开始监听配置文件变更
func (m *ReloadManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("reload manager already running")
	}
	if m.loader == nil || m.loader.configPath == "" {
		m.mu.Unlock()
		return fmt.Errorf("no config path to watch")
	}
	configPath := m.loader.configPath
	m.running = true
	m.mu.Unlock()

	watcherOpts := append([]WatcherOption{WithWatcherLogger(m.logger)}, m.watcherOpts...)
	watcher, err := NewFileWatcher([]string{configPath}, watcherOpts...)
	if err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	watcher.OnChange(func(event FileEvent) {
		if event.Op == FileOpRemove {
			m.logger.Warn("Config file removed, keeping current config",
				zap.String("path", event.Path))
			return
		}
		if err := m.reload(reloadSourceFile); err != nil {
			m.logger.Warn("Config reload failed, keeping current config",
				zap.String("path", event.Path),
				zap.Error(err))
		}
	})

	if err := watcher.Start(ctx); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	m.logger.Info("Config hot reload started", zap.String("path", configPath))
	return nil
}

// Stop 停止监听
func (m *ReloadManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false

	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			return err
		}
		m.watcher = nil
	}

	m.logger.Info("Config hot reload stopped")
	return nil
}

// Reload 手动触发一次重载
func (m *ReloadManager) Reload() error {
	return m.reload(reloadSourceLocal)
}

// reload 重新加载配置并在校验通过后替换当前配置
func (m *ReloadManager) reload(source string) error {
	newConfig, err := m.loader.Load()
	if err != nil {
		return err
	}
	if err := newConfig.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	oldConfig := m.config
	changedPaths := diffPaths(oldConfig, newConfig)
	if len(changedPaths) == 0 {
		m.mu.Unlock()
		m.logger.Debug("Config reloaded with no changes", zap.String("source", source))
		return nil
	}

	now := time.Now()
	restartPaths := make([]string, 0)
	for _, path := range changedPaths {
		policy, known := fieldPolicies[path]
		requiresRestart := policy.RequiresRestart || !known
		if requiresRestart {
			restartPaths = append(restartPaths, path)
		}

		oldValue, newValue := fieldValueAt(oldConfig, path), fieldValueAt(newConfig, path)
		if policy.Sensitive {
			oldValue, newValue = redactedValue, redactedValue
		}

		m.changeLog = append(m.changeLog, ConfigChange{
			Timestamp:       now,
			Source:          source,
			Path:            path,
			OldValue:        oldValue,
			NewValue:        newValue,
			RequiresRestart: requiresRestart,
		})
	}
	if len(m.changeLog) > maxChangeLogSize {
		m.changeLog = m.changeLog[len(m.changeLog)-maxChangeLogSize:]
	}

	m.config = newConfig
	callbacks := make([]ReloadCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	m.logger.Info("Config reloaded",
		zap.String("source", source),
		zap.Strings("changed", changedPaths))
	if len(restartPaths) > 0 {
		m.logger.Warn("Some config changes require a restart to take effect",
			zap.Strings("paths", restartPaths))
	}

	for _, cb := range callbacks {
		cb(oldConfig, newConfig)
	}

	return nil
}

// GetChangeLog 返回最近的 limit 条变更记录，最新的在前
func (m *ReloadManager) GetChangeLog(limit int) []ConfigChange {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.changeLog) {
		limit = len(m.changeLog)
	}

	out := make([]ConfigChange, 0, limit)
	for i := len(m.changeLog) - 1; i >= len(m.changeLog)-limit; i-- {
		out = append(out, m.changeLog[i])
	}
	return out
}

// --- 配置差异比较 ---

// diffPaths 返回两份配置之间所有值不同的字段路径
func diffPaths(oldConfig, newConfig *Config) []string {
	paths := make([]string, 0)
	diffStructs(reflect.ValueOf(oldConfig).Elem(), reflect.ValueOf(newConfig).Elem(), "", &paths)
	return paths
}

// diffStructs 递归比较结构体字段，叶子字段用 DeepEqual 判断
func diffStructs(oldV, newV reflect.Value, prefix string, out *[]string) {
	t := oldV.Type()
	for i := 0; i < oldV.NumField(); i++ {
		oldField := oldV.Field(i)
		newField := newV.Field(i)

		path := t.Field(i).Name
		if prefix != "" {
			path = prefix + "." + path
		}

		if oldField.Kind() == reflect.Struct {
			diffStructs(oldField, newField, path, out)
			continue
		}

		if !reflect.DeepEqual(oldField.Interface(), newField.Interface()) {
			*out = append(*out, path)
		}
	}
}

// fieldValueAt 按 "Section.Field" 路径取出配置值，路径非法时返回 nil
func fieldValueAt(cfg *Config, path string) any {
	v := reflect.ValueOf(cfg).Elem()
	for _, name := range strings.Split(path, ".") {
		v = v.FieldByName(name)
		if !v.IsValid() {
			return nil
		}
	}
	return v.Interface()
}
