// Package api provides the HTTP surface of the SchemaFlow service: the
// request/response types and the router.
//
// # API Overview
//
// SchemaFlow provides a RESTful API for:
//   - Schema-constrained JSON generation with one corrective retry
//   - Plain text generation, optionally with a target language
//   - Model availability probing
//   - Generation audit records (list and get)
//   - Health monitoring and version info
//
// # Endpoints
//
//	POST /api/v1/generate                 generate a value satisfying a JSON Schema
//	POST /api/v1/generate/text            single-call plain text generation
//	POST /api/v1/generate/text/language   plain text generation in a target language
//	GET  /api/v1/availability             probe backend model availability
//	GET  /api/v1/generations              list recent generation records
//	GET  /api/v1/generations/{id}         get one generation record
//	GET  /health, /healthz, /ready        health and readiness
//	GET  /version                         build information
//
// Prometheus metrics are served on a separate listener, not through this
// router.
//
// # Authentication
//
// When API key auth is enabled, endpoints require the X-API-Key header:
//
//	X-API-Key: your-api-key
//
// Health, readiness, version and metrics endpoints never require auth.
//
// # Response Envelope
//
// Every endpoint responds with the same envelope:
//
//	{"success": true, "data": ..., "timestamp": ..., "request_id": ...}
//	{"success": false, "error": {"code": ..., "message": ...}, ...}
//
// Generation failures carry one of the four stable codes INVALID_JSON,
// SCHEMA_MISMATCH, UNAVAILABLE or NATIVE_ERROR.
package api
