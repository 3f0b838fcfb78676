// internal/property/fetch/cache.go
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"property-intel/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache stores whole property records by normalized key. Implementations
// must never expose an expired or partially written entry.
//
// A nil record is a negative entry: Set(ctx, key, nil, ttl) remembers that
// the provider had nothing for key, and Get then reports (nil, true, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*models.PropertyRecord, bool, error)
	Set(ctx context.Context, key string, record *models.PropertyRecord, ttl time.Duration) error
	Backend() string
}

const negativeEntry = "null"

type memoryEntry struct {
	record    *models.PropertyRecord
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. Expired entries are evicted when read.
// Records are copied on the way in and out.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*models.PropertyRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.record.Clone(), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, record *models.PropertyRecord, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{record: record.Clone(), expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Backend() string { return "memory" }

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RedisCache stores JSON-encoded records with SET EX so an entry appears
// whole and expires server-side. Negative entries are stored as "null".
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*models.PropertyRecord, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	if string(val) == negativeEntry {
		return nil, true, nil
	}

	var record models.PropertyRecord
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, false, fmt.Errorf("decode cached record: %w", err)
	}
	return &record, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, record *models.PropertyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Backend() string { return "redis" }
