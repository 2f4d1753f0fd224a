package store

import (
	"context"
	"sync"
	"time"
)

// stringEntry stores a plain value and its expiry.
type stringEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// setEntry stores sorted-set members (member -> score) and the key's expiry.
type setEntry struct {
	members   map[string]float64
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of Store.
//
// It backs tests and single-instance deployments. Expiry is evaluated
// lazily on access and optionally swept by a background cleanup goroutine.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]stringEntry
	sets    map[string]*setEntry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the store's wall clock. Intended for tests that
// need deterministic expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemory creates a new MemoryStore.
//
// ctx manages the lifecycle of the background cleanup goroutine;
// cleanupInterval is how often expired entries are swept. Pass 0 to disable
// the sweep and rely on lazy expiry alone.
func NewMemory(ctx context.Context, cleanupInterval time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		strings: make(map[string]stringEntry),
		sets:    make(map[string]*setEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cleanupInterval > 0 {
		go s.runCleanup(ctx, cleanupInterval)
	}

	return s
}

// expired reports whether an expiry timestamp has passed. Zero means the
// entry never expires.
func (s *MemoryStore) expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && s.now().After(expiresAt)
}

// Get returns the value at key, or ErrNotFound once the entry has expired.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.strings[key]
	if !ok || s.expired(e.expiresAt) {
		delete(s.strings, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// GetBatch returns all keys, with nil entries for missing or expired keys.
func (s *MemoryStore) GetBatch(ctx context.Context, keys ...string) ([]*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*string, len(keys))
	for i, key := range keys {
		e, ok := s.strings[key]
		if !ok || s.expired(e.expiresAt) {
			delete(s.strings, key)
			continue
		}
		v := e.value
		out[i] = &v
	}
	return out, nil
}

// SetWithTTL writes value with a fresh expiry.
func (s *MemoryStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strings[key] = stringEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// SetKeepTTL updates the value at key without touching its expiry.
// Writing to an absent key creates it without an expiry.
func (s *MemoryStore) SetKeepTTL(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.strings[key]
	if !ok || s.expired(e.expiresAt) {
		s.strings[key] = stringEntry{value: value}
		return nil
	}
	e.value = value
	s.strings[key] = e
	return nil
}

// SetBatchWithTTL writes all pairs under one lock with a shared expiry.
func (s *MemoryStore) SetBatchWithTTL(ctx context.Context, pairs map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	for key, value := range pairs {
		s.strings[key] = stringEntry{value: value, expiresAt: expiresAt}
	}
	return nil
}

// liveSet returns the live set at key, or nil when absent or expired.
// Caller must hold the lock.
func (s *MemoryStore) liveSet(key string) *setEntry {
	e, ok := s.sets[key]
	if !ok {
		return nil
	}
	if s.expired(e.expiresAt) {
		delete(s.sets, key)
		return nil
	}
	return e
}

// SortedSetAdd adds member with score to the set at key, creating the set
// (with no expiry yet) when absent.
func (s *MemoryStore) SortedSetAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveSet(key)
	if e == nil {
		e = &setEntry{members: make(map[string]float64)}
		s.sets[key] = e
	}
	e.members[member] = score
	return nil
}

// SortedSetRemoveRangeByScore removes members with min <= score <= max.
func (s *MemoryStore) SortedSetRemoveRangeByScore(ctx context.Context, key string, min, max float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveSet(key)
	if e == nil {
		return nil
	}
	for member, score := range e.members {
		if score >= min && score <= max {
			delete(e.members, member)
		}
	}
	return nil
}

// SortedSetCard returns the number of members at key; absent keys count 0.
func (s *MemoryStore) SortedSetCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveSet(key)
	if e == nil {
		return 0, nil
	}
	return int64(len(e.members)), nil
}

// SortedSetOldest returns the lowest-scored member at key.
func (s *MemoryStore) SortedSetOldest(ctx context.Context, key string) (string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.liveSet(key)
	if e == nil || len(e.members) == 0 {
		return "", 0, ErrNotFound
	}

	var (
		oldestMember string
		oldestScore  float64
		first        = true
	)
	for member, score := range e.members {
		if first || score < oldestScore {
			oldestMember = member
			oldestScore = score
			first = false
		}
	}
	return oldestMember, oldestScore, nil
}

// Expire refreshes the TTL of key, for both plain keys and sorted sets.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if e, ok := s.strings[key]; ok && !s.expired(e.expiresAt) {
		e.expiresAt = expiresAt
		s.strings[key] = e
	}
	if e := s.liveSet(key); e != nil {
		e.expiresAt = expiresAt
	}
	return nil
}

// runCleanup periodically removes expired entries so idle identities do not
// accumulate forever.
func (s *MemoryStore) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, e := range s.strings {
				if s.expired(e.expiresAt) {
					delete(s.strings, key)
				}
			}
			for key, e := range s.sets {
				if s.expired(e.expiresAt) || len(e.members) == 0 {
					delete(s.sets, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
