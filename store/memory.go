package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory record store for development and testing.
// It keeps at most maxRecords records and evicts the oldest beyond that.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[string]*GenerationRecord
	order      []string // insertion order, oldest first
	maxRecords int
	closed     bool
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(config Config) *MemoryStore {
	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultConfig().MaxRecords
	}
	return &MemoryStore{
		records:    make(map[string]*GenerationRecord),
		maxRecords: maxRecords,
	}
}

// SaveRecord stores a record, assigning ID and CreatedAt when unset
func (s *MemoryStore) SaveRecord(ctx context.Context, record *GenerationRecord) error {
	if record == nil {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record.clone()

	// Evict oldest records beyond the bound
	for len(s.order) > s.maxRecords {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
	}

	return nil
}

// GetRecord returns the record with the given ID
func (s *MemoryStore) GetRecord(ctx context.Context, id string) (*GenerationRecord, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	record, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return record.clone(), nil
}

// ListRecords returns recent records, newest first
func (s *MemoryStore) ListRecords(ctx context.Context, query RecordQuery) ([]*GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	limit := query.Limit
	if limit <= 0 || limit > s.maxRecords {
		limit = s.maxRecords
	}

	results := make([]*GenerationRecord, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(results) < limit; i-- {
		record := s.records[s.order[i]]
		if query.Operation != "" && record.Operation != query.Operation {
			continue
		}
		if query.Outcome != "" && record.Outcome != query.Outcome {
			continue
		}
		results = append(results, record.clone())
	}
	return results, nil
}

// CountByOutcome returns record counts keyed by outcome label
func (s *MemoryStore) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	counts := make(map[string]int64)
	for _, record := range s.records {
		counts[record.Outcome]++
	}
	return counts, nil
}

// Ping checks if the store is healthy
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	return ctx.Err()
}

// Close closes the store
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	s.order = nil
	return nil
}
