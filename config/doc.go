// Package config 提供 SchemaFlow 服务的配置管理功能。
//
// 包含配置加载与运行时热重载。
// 支持从 YAML 文件和环境变量加载配置，
// 并在配置文件变更时重新加载可热更新的字段。
package config
