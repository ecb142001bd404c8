package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix = "analytics:cache:"
	redisLatestKey = "analytics:cache:__latest"
)

// RedisStore keeps cache entries as JSON blobs under one key per metric.
// Freshness is judged against the injected clock, not a Redis TTL, so the
// same max-age semantics hold across both store backends.
type RedisStore struct {
	client *goredis.Client
	now    func() time.Time
}

func NewRedisStore(client *goredis.Client, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, now: now}
}

func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	entry.LastCalculated = entry.LastCalculated.UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %s: %w", entry.MetricName, err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+entry.MetricName, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", entry.MetricName, err)
	}
	// Latest pointer is last-writer-wins, same as the entry itself.
	if err := s.client.Set(ctx, redisLatestKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store latest cache pointer: %w", err)
	}
	return nil
}

func (s *RedisStore) GetFresh(ctx context.Context, name string, maxAge time.Duration) (*Entry, error) {
	entry, err := s.getEntry(ctx, redisKeyPrefix+name)
	if err != nil || entry == nil {
		return nil, err
	}

	if s.now().UTC().Sub(entry.LastCalculated) > maxAge {
		return nil, nil
	}
	return entry, nil
}

func (s *RedisStore) Latest(ctx context.Context) (*Entry, error) {
	return s.getEntry(ctx, redisLatestKey)
}

func (s *RedisStore) getEntry(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A corrupt stored entry behaves as a miss.
		return nil, nil
	}
	entry.LastCalculated = entry.LastCalculated.UTC()
	return &entry, nil
}
