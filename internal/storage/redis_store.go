package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tixgo/internal/flight"
	"tixgo/pkg/cache"
)

const (
	searchKeyPrefix = "flight:search:"
	flightKeyPrefix = "flight:item:"
)

// RedisStore keeps cache entries as JSON values with a Redis TTL matching
// their lifetime, so expired rows disappear without a sweep.
type RedisStore struct {
	cache cache.Cache
}

var _ flight.Store = (*RedisStore)(nil)

func NewRedisStore(c cache.Cache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) GetSearch(ctx context.Context, hash string) (*flight.CachedSearch, error) {
	var entry flight.CachedSearch
	if err := s.get(ctx, searchKeyPrefix+hash, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) UpsertSearch(ctx context.Context, entry *flight.CachedSearch) error {
	return s.set(ctx, searchKeyPrefix+entry.Hash, entry, entry.ExpiresAt.Sub(entry.CachedAt))
}

func (s *RedisStore) DeleteSearch(ctx context.Context, hash string) error {
	if err := s.cache.Del(ctx, searchKeyPrefix+hash); err != nil {
		return fmt.Errorf("delete %s: %w", hash, err)
	}
	return nil
}

func (s *RedisStore) GetFlight(ctx context.Context, flightID string) (*flight.CachedFlight, error) {
	var entry flight.CachedFlight
	if err := s.get(ctx, flightKeyPrefix+flightID, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) UpsertFlight(ctx context.Context, entry *flight.CachedFlight) error {
	return s.set(ctx, flightKeyPrefix+entry.FlightID, entry, entry.ExpiresAt.Sub(entry.CachedAt))
}

// DeleteExpired is a no-op; Redis evicts keys on its own.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (flight.CleanupResult, error) {
	return flight.CleanupResult{}, nil
}

func (s *RedisStore) get(ctx context.Context, key string, dst any) error {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return flight.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: non-positive ttl %s", key, ttl)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
