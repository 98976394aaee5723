package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed record store. Record bodies expire with
// the configured retention; the recent-id list and outcome counters are
// bounded separately, so list reads must tolerate expired bodies.
type RedisStore struct {
	client     *redis.Client
	keyPrefix  string
	retention  time.Duration
	maxRecords int
}

// NewRedisStore creates a new Redis-based record store
func NewRedisStore(config Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		PoolSize: config.Redis.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := config.Redis.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "schemaflow:"
	}

	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultConfig().MaxRecords
	}

	return &RedisStore{
		client:     client,
		keyPrefix:  keyPrefix + "gen:",
		retention:  config.Retention,
		maxRecords: maxRecords,
	}, nil
}

// recordKey returns the Redis key for a record body
func (s *RedisStore) recordKey(id string) string {
	return s.keyPrefix + "record:" + id
}

// recentKey returns the Redis key for the recent-id list
func (s *RedisStore) recentKey() string {
	return s.keyPrefix + "recent"
}

// outcomesKey returns the Redis key for the outcome counter hash
func (s *RedisStore) outcomesKey() string {
	return s.keyPrefix + "outcomes"
}

// SaveRecord persists a record, assigning ID and CreatedAt when unset
func (s *RedisStore) SaveRecord(ctx context.Context, record *GenerationRecord) error {
	if record == nil {
		return ErrInvalidInput
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.recordKey(record.ID), data, s.retention)
	pipe.LPush(ctx, s.recentKey(), record.ID)
	pipe.LTrim(ctx, s.recentKey(), 0, int64(s.maxRecords)-1)
	pipe.HIncrBy(ctx, s.outcomesKey(), record.Outcome, 1)

	_, err = pipe.Exec(ctx)
	return err
}

// GetRecord returns the record with the given ID
func (s *RedisStore) GetRecord(ctx context.Context, id string) (*GenerationRecord, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var record GenerationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

// ListRecords returns recent records, newest first. IDs whose bodies
// have expired are skipped.
func (s *RedisStore) ListRecords(ctx context.Context, query RecordQuery) ([]*GenerationRecord, error) {
	limit := query.Limit
	if limit <= 0 || limit > s.maxRecords {
		limit = s.maxRecords
	}

	ids, err := s.client.LRange(ctx, s.recentKey(), 0, int64(s.maxRecords)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list record ids: %w", err)
	}
	if len(ids) == 0 {
		return []*GenerationRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	results := make([]*GenerationRecord, 0, limit)
	for _, value := range values {
		if len(results) >= limit {
			break
		}
		raw, ok := value.(string)
		if !ok {
			continue // expired body
		}

		var record GenerationRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		if query.Operation != "" && record.Operation != query.Operation {
			continue
		}
		if query.Outcome != "" && record.Outcome != query.Outcome {
			continue
		}
		results = append(results, &record)
	}
	return results, nil
}

// CountByOutcome returns record counts keyed by outcome label. Counters
// survive record expiry, so they reflect all-time totals.
func (s *RedisStore) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	fields, err := s.client.HGetAll(ctx, s.outcomesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome counters: %w", err)
	}

	counts := make(map[string]int64, len(fields))
	for outcome, value := range fields {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[outcome] = n
	}
	return counts, nil
}

// Ping checks if the store is healthy
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the store
func (s *RedisStore) Close() error {
	return s.client.Close()
}
