// Package tlsutil 提供集中式 TLS 配置：出站方向为 OpenAI / Anthropic
// Provider 的 HTTP 客户端，入站方向为 API 服务器监听器
// （TLS 1.2+，仅 AEAD 密码套件，服务端 ALPN h2 + http/1.1）。
package tlsutil
