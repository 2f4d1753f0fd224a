// Package store provides the window counter storage backends for tokengate.
//
// Currently supported backends:
//   - MemoryStore: in-memory store for tests and single-instance applications
//   - RedisStore: Redis-based store for distributed applications
//
// Stores expose the small set of atomic primitives the limiters consume:
// plain keys with TTL for fixed-window counters and sorted sets for
// sliding-window request logs. Every operation can fail (network, timeout);
// the limiters treat any store error as a signal to fail open.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and SortedSetOldest when the key is absent
// or the set is empty. An absent key is a normal condition: it means the
// identity has no usage in the current window.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistence contract consumed by the rate limiters.
//
// Implementations must be safe for concurrent use. They are not required to
// make a read-then-write sequence across calls atomic; the limiters accept
// that two interleaved increments for the same key can lose an update.
type Store interface {
	// Get returns the string value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// GetBatch returns the values for keys in one round trip. Missing keys
	// yield a nil entry rather than an error.
	GetBatch(ctx context.Context, keys ...string) ([]*string, error)

	// SetWithTTL writes value under key with a fresh expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// SetKeepTTL updates the value under key without resetting its
	// remaining expiry. Writing to a key with no TTL leaves it unexpiring.
	SetKeepTTL(ctx context.Context, key, value string) error

	// SetBatchWithTTL writes all pairs with the same expiry in one
	// pipelined round trip, so companion keys expire together.
	SetBatchWithTTL(ctx context.Context, pairs map[string]string, ttl time.Duration) error

	// SortedSetAdd adds member with score to the sorted set at key.
	SortedSetAdd(ctx context.Context, key string, score float64, member string) error

	// SortedSetRemoveRangeByScore removes members with min <= score <= max.
	SortedSetRemoveRangeByScore(ctx context.Context, key string, min, max float64) error

	// SortedSetCard returns the number of members in the sorted set at key.
	// An absent key counts as zero, not an error.
	SortedSetCard(ctx context.Context, key string) (int64, error)

	// SortedSetOldest returns the lowest-scored member of the set, or
	// ErrNotFound when the set is empty or absent.
	SortedSetOldest(ctx context.Context, key string) (member string, score float64, err error)

	// Expire refreshes the TTL of key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
