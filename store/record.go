package store

import (
	"time"

	"github.com/BaSui01/schemaflow/types"
)

// Operation names recorded by the API layer.
const (
	OpGenerate             = "generate"
	OpGenerateText         = "generate_text"
	OpGenerateTextLanguage = "generate_text_language"
)

// Outcome labels. These are stable strings shared by records, metrics and
// the health endpoint; changing them breaks dashboards.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidJSON    = "invalid_json"
	OutcomeSchemaMismatch = "schema_mismatch"
	OutcomeUnavailable    = "unavailable"
	OutcomeNativeError    = "native_error"
)

// OutcomeForError maps a generation error to its outcome label. A nil
// error maps to OutcomeSuccess; errors without a structured code map to
// OutcomeNativeError.
func OutcomeForError(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch types.GetErrorCode(err) {
	case types.ErrInvalidJSON:
		return OutcomeInvalidJSON
	case types.ErrSchemaMismatch:
		return OutcomeSchemaMismatch
	case types.ErrUnavailable:
		return OutcomeUnavailable
	default:
		return OutcomeNativeError
	}
}

// GenerationRecord summarizes one generation request as observed by the
// API layer. It intentionally stores the failure message rather than the
// model's raw responses; raw text can contain user data and belongs in
// logs with their own retention, not in the audit table.
type GenerationRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	RequestID    string    `gorm:"size:64;index:idx_sf_records_request" json:"request_id,omitempty"`
	Operation    string    `gorm:"size:32;not null;index:idx_sf_records_operation" json:"operation"`
	Provider     string    `gorm:"size:32" json:"provider,omitempty"`
	Model        string    `gorm:"size:128" json:"model,omitempty"`
	Outcome      string    `gorm:"size:32;not null;index:idx_sf_records_outcome" json:"outcome"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	DurationMS   int64     `gorm:"not null" json:"duration_ms"`
	CreatedAt    time.Time `gorm:"index:idx_sf_records_created" json:"created_at"`
}

// TableName returns the table name for GORM
func (GenerationRecord) TableName() string {
	return "sf_generation_records"
}

// clone returns a copy safe to hand to callers.
func (r *GenerationRecord) clone() *GenerationRecord {
	cp := *r
	return &cp
}
