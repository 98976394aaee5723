// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 SchemaFlow 提供集中式的 TracerProvider 和 MeterProvider 配置，
// 通过 OTLP gRPC 导出请求与生成链路的 trace 和指标。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
package telemetry
