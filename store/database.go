package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/schemaflow/internal/database"
)

// saveRetries is the transaction retry budget for transient failures
// such as deadlocks and dropped connections.
const saveRetries = 3

// cleanupInterval is how often the retention janitor runs.
const cleanupInterval = 1 * time.Hour

// DatabaseStore persists records through GORM. It owns the connection
// pool handed to it and closes it on Close.
type DatabaseStore struct {
	pool       *database.PoolManager
	logger     *zap.Logger
	retention  time.Duration
	maxRecords int

	stopCh    chan struct{}
	stopOnce  sync.Once
	janitorWG sync.WaitGroup
}

// NewDatabaseStore creates a database-backed store on an existing pool.
// It migrates the records table and, when retention is configured,
// starts a janitor that deletes expired records once per hour.
func NewDatabaseStore(pool *database.PoolManager, config Config, logger *zap.Logger) (*DatabaseStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("database store: pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := pool.DB().AutoMigrate(&GenerationRecord{}); err != nil {
		return nil, fmt.Errorf("database store: migrate records table: %w", err)
	}

	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultConfig().MaxRecords
	}

	s := &DatabaseStore{
		pool:       pool,
		logger:     logger,
		retention:  config.Retention,
		maxRecords: maxRecords,
		stopCh:     make(chan struct{}),
	}

	if s.retention > 0 {
		s.janitorWG.Add(1)
		go s.janitorLoop()
	}

	return s, nil
}

// SaveRecord persists a record, retrying transient transaction failures
func (s *DatabaseStore) SaveRecord(ctx context.Context, record *GenerationRecord) error {
	if record == nil {
		return ErrInvalidInput
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	return s.pool.WithTransactionRetry(ctx, saveRetries, func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
}

// GetRecord returns the record with the given ID
func (s *DatabaseStore) GetRecord(ctx context.Context, id string) (*GenerationRecord, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	var record GenerationRecord
	err := s.pool.DB().WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database store: get record: %w", err)
	}
	return &record, nil
}

// ListRecords returns recent records, newest first
func (s *DatabaseStore) ListRecords(ctx context.Context, query RecordQuery) ([]*GenerationRecord, error) {
	limit := query.Limit
	if limit <= 0 || limit > s.maxRecords {
		limit = s.maxRecords
	}

	db := s.pool.DB().WithContext(ctx).Model(&GenerationRecord{})
	if query.Operation != "" {
		db = db.Where("operation = ?", query.Operation)
	}
	if query.Outcome != "" {
		db = db.Where("outcome = ?", query.Outcome)
	}

	var records []*GenerationRecord
	err := db.Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("database store: list records: %w", err)
	}
	return records, nil
}

// CountByOutcome returns record counts keyed by outcome label
func (s *DatabaseStore) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Outcome string
		Total   int64
	}
	err := s.pool.DB().WithContext(ctx).
		Model(&GenerationRecord{}).
		Select("outcome, COUNT(*) AS total").
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database store: count by outcome: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Total
	}
	return counts, nil
}

// Ping checks database connectivity
func (s *DatabaseStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close stops the janitor and closes the connection pool
func (s *DatabaseStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.janitorWG.Wait()
	return s.pool.Close()
}

// Pool exposes the underlying pool for stats polling.
func (s *DatabaseStore) Pool() *database.PoolManager {
	return s.pool
}

// PruneBefore deletes records created before the cutoff and returns the
// number of rows removed.
func (s *DatabaseStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.pool.DB().WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&GenerationRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("database store: prune records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *DatabaseStore) janitorLoop() {
	defer s.janitorWG.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := s.PruneBefore(ctx, time.Now().Add(-s.retention))
			cancel()
			if err != nil {
				s.logger.Warn("record cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Info("expired records removed",
					zap.Int64("count", removed),
					zap.Duration("retention", s.retention))
			}
		}
	}
}
