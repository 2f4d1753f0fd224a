package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTimeout bounds every Redis operation when no explicit timeout is
// configured. A hung store call must never hold a request open indefinitely;
// on timeout the limiters fail open exactly as they do on any other error.
const DefaultTimeout = 5 * time.Second

// RedisStore implements the Store interface using Redis as the backend.
// It is suitable for distributed systems where multiple application
// instances need to share rate-limiting state.
//
// The process should hold a single pooled client and pass it here; no
// in-process locking is used or required since Redis serializes individual
// command execution.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedis creates a new RedisStore around an existing client. The client
// is injected rather than constructed here so tests can substitute their
// own and the process owns connection lifecycle in one place.
func NewRedis(client *redis.Client) *RedisStore {
	return NewRedisWithTimeout(client, DefaultTimeout)
}

// NewRedisWithTimeout creates a RedisStore with a custom per-operation
// timeout. Timeouts at or below zero fall back to DefaultTimeout.
func NewRedisWithTimeout(client *redis.Client, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RedisStore{client: client, timeout: timeout}
}

// bound derives a per-operation context so a slow Redis round trip cannot
// outlive the caller's patience.
func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Get returns the value at key, mapping redis.Nil to ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// GetBatch fetches all keys with a single MGET.
func (s *RedisStore) GetBatch(ctx context.Context, keys ...string) ([]*string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*string, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			out[i] = &str
		}
	}
	return out, nil
}

// SetWithTTL writes value with a fresh expiry.
func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.Set(ctx, key, value, ttl).Err()
}

// SetKeepTTL updates the value without resetting the remaining expiry,
// using Redis's native KEEPTTL.
func (s *RedisStore) SetKeepTTL(ctx context.Context, key, value string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.Set(ctx, key, value, redis.KeepTTL).Err()
}

// SetBatchWithTTL writes every pair with the same TTL in one pipelined
// round trip. Companion keys written together expire together, which is
// what lets the store's own expiry act as the window boundary.
func (s *RedisStore) SetBatchWithTTL(ctx context.Context, pairs map[string]string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range pairs {
			pipe.Set(ctx, key, value, ttl)
		}
		return nil
	})
	return err
}

// SortedSetAdd adds member with score to the set at key.
func (s *RedisStore) SortedSetAdd(ctx context.Context, key string, score float64, member string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// SortedSetRemoveRangeByScore removes members with min <= score <= max.
func (s *RedisStore) SortedSetRemoveRangeByScore(ctx context.Context, key string, min, max float64) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.ZRemRangeByScore(ctx, key, formatScore(min), formatScore(max)).Err()
}

// SortedSetCard returns the cardinality of the set at key. Redis reports 0
// for absent keys, which is the behavior the limiters want.
func (s *RedisStore) SortedSetCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.ZCard(ctx, key).Result()
}

// SortedSetOldest returns the lowest-scored member of the set at key.
func (s *RedisStore) SortedSetOldest(ctx context.Context, key string) (string, float64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	entries, err := s.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return "", 0, err
	}
	if len(entries) == 0 {
		return "", 0, ErrNotFound
	}

	member, _ := entries[0].Member.(string)
	return member, entries[0].Score, nil
}

// Expire refreshes the TTL of key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.client.Expire(ctx, key, ttl).Err()
}

// formatScore renders a score the way ZREMRANGEBYSCORE expects, keeping
// infinities symbolic.
func formatScore(f float64) string {
	switch {
	case f > 1e17:
		return "+inf"
	case f < -1e17:
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
