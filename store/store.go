// Package store provides persistent storage for generation outcomes in the
// SchemaFlow service.
//
// Every generation handled by the API layer produces one GenerationRecord
// summarizing what was asked and how it ended. Records power the audit
// endpoints and the outcome counters surfaced by the health handler.
//
// Supported backends:
// - Memory: For development and testing (default)
// - Database: For single-node and shared-database deployments (GORM)
// - Redis: For deployments that already run Redis and want cheap TTL cleanup
package store

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeDatabase StoreType = "database"
	StoreTypeRedis    StoreType = "redis"
)

// DatabaseConfig contains database-specific configuration.
// Driver selects the GORM dialector; DSN is used for postgres and mysql,
// Path for sqlite.
type DatabaseConfig struct {
	// Driver is the database driver: postgres, mysql or sqlite
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the connection string for server databases
	DSN string `json:"dsn" yaml:"dsn"`

	// Path is the database file path for sqlite
	Path string `json:"path" yaml:"path"`

	// MaxOpenConns caps the connection pool (0 uses the pool default)
	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns"`

	// MaxIdleConns caps idle connections (0 uses the pool default)
	MaxIdleConns int `json:"max_idle_conns" yaml:"max_idle_conns"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	// Host is the Redis server host
	Host string `json:"host" yaml:"host"`

	// Port is the Redis server port
	Port int `json:"port" yaml:"port"`

	// Password is the Redis password (optional)
	Password string `json:"password" yaml:"password"`

	// DB is the Redis database number
	DB int `json:"db" yaml:"db"`

	// PoolSize is the connection pool size
	PoolSize int `json:"pool_size" yaml:"pool_size"`

	// KeyPrefix is the prefix for all Redis keys
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// Config is the configuration for all store implementations
type Config struct {
	// Type is the storage backend type
	Type StoreType `json:"type" yaml:"type"`

	// Database configuration (only used when Type is "database")
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Redis configuration (only used when Type is "redis")
	Redis RedisConfig `json:"redis" yaml:"redis"`

	// Retention is how long records are kept. The Redis backend enforces
	// it with key TTLs; the database backend exposes it to the cleanup
	// command; the memory backend ignores it.
	Retention time.Duration `json:"retention" yaml:"retention"`

	// MaxRecords bounds the recent-record window used by ListRecords.
	// The memory backend also evicts beyond this bound.
	MaxRecords int `json:"max_records" yaml:"max_records"`
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		Type: StoreTypeMemory,
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/schemaflow.db",
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "schemaflow:",
		},
		Retention:  24 * time.Hour,
		MaxRecords: 1000,
	}
}

// RecordQuery filters ListRecords. Zero-value fields match everything.
type RecordQuery struct {
	// Operation filters by operation name (e.g. "generate")
	Operation string

	// Outcome filters by outcome label (e.g. "schema_mismatch")
	Outcome string

	// Limit caps the number of returned records; 0 means the store's
	// MaxRecords bound
	Limit int
}

// Store persists generation records.
//
// Implementations must be safe for concurrent use. Records returned by
// Get and List are copies; mutating them does not affect the store.
type Store interface {
	// SaveRecord persists a record, assigning ID and CreatedAt when unset
	SaveRecord(ctx context.Context, record *GenerationRecord) error

	// GetRecord returns the record with the given ID or ErrNotFound
	GetRecord(ctx context.Context, id string) (*GenerationRecord, error)

	// ListRecords returns recent records, newest first
	ListRecords(ctx context.Context, query RecordQuery) ([]*GenerationRecord, error)

	// CountByOutcome returns total record counts keyed by outcome label
	CountByOutcome(ctx context.Context) (map[string]int64, error)

	// Ping checks if the store is healthy
	Ping(ctx context.Context) error

	// Close closes the store and releases resources
	Close() error
}
