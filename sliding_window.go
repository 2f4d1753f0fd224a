package tokengate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tokengate/tokengate/store"
)

// SlidingWindowLimiter counts discrete requests in a true sliding window.
//
// Each identity owns a sorted set whose members are unique per-request ids
// scored with the request's unix timestamp. Counting means pruning members
// older than the window and reading the cardinality. Because every request
// adds a distinct member, concurrent increments never overwrite each other;
// only the cardinality read used for the blocked decision can race, which
// affects borderline accuracy, not data.
//
// Reset time is the expiry of the oldest surviving member, not a fixed
// anchor, at the cost of one extra store round trip when the identity is at
// or over capacity.
type SlidingWindowLimiter struct {
	store  store.Store
	policy Policy
	cfg    *limiterConfig
}

// NewSlidingWindow creates a sliding-window request limiter.
func NewSlidingWindow(st store.Store, policy Policy, opts ...LimiterOption) (*SlidingWindowLimiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &SlidingWindowLimiter{
		store:  st,
		policy: policy,
		cfg:    newLimiterConfig(opts...),
	}, nil
}

// Check reports the current request count in the window without recording a
// request. It prunes stale members as a side effect; skipping the prune
// would not break correctness since the next increment prunes again.
func (l *SlidingWindowLimiter) Check(ctx context.Context, identity string) (Result, error) {
	if identity == "" {
		return Result{}, ErrEmptyIdentity
	}

	now := l.cfg.now()
	key := l.policy.key(identity)

	used, err := l.pruneAndCount(ctx, key, now)
	if err != nil {
		l.cfg.logger.Errorf("sliding window: store read failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}

	res := enforced(l.policy, used, l.resetAt(ctx, key, now, used))
	l.cfg.record(l.policy, res)
	return res, nil
}

// Increment records one request for identity. The cost argument is ignored
// beyond contract validation: every call counts as exactly one request.
//
// The request that tips the count over the limit is still recorded but
// returned with Blocked=true; the caller decides whether to honor or reject
// it after the fact.
func (l *SlidingWindowLimiter) Increment(ctx context.Context, identity string, cost int64) (Result, error) {
	if identity == "" {
		return Result{}, ErrEmptyIdentity
	}
	if cost < 0 {
		return Result{}, ErrNegativeCost
	}

	now := l.cfg.now()
	key := l.policy.key(identity)

	before, err := l.pruneAndCount(ctx, key, now)
	if err != nil {
		l.cfg.logger.Errorf("sliding window: store read failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}

	member := uuid.NewString()
	if err := l.store.SortedSetAdd(ctx, key, float64(now.Unix()), member); err != nil {
		l.cfg.logger.Errorf("sliding window: store write failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}
	if err := l.store.Expire(ctx, key, l.policy.Window); err != nil {
		l.cfg.logger.Errorf("sliding window: ttl refresh failed for %q: %v", identity, err)
	}

	used := before + 1
	l.cfg.logger.Debugf("sliding window: %q used %d/%d", identity, used, l.policy.MaxUnits)
	res := enforced(l.policy, used, l.resetAt(ctx, key, now, used))
	l.cfg.record(l.policy, res)
	return res, nil
}

// pruneAndCount drops members that have slid out of the window and returns
// the surviving count.
func (l *SlidingWindowLimiter) pruneAndCount(ctx context.Context, key string, now time.Time) (int64, error) {
	cutoff := float64(now.Add(-l.policy.Window).Unix())
	if err := l.store.SortedSetRemoveRangeByScore(ctx, key, 0, cutoff); err != nil {
		return 0, err
	}
	return l.store.SortedSetCard(ctx, key)
}

// resetAt computes when pressure next eases. Under capacity the window is
// effectively open and the reset is a full window out. At or over capacity
// the oldest surviving request determines when a slot frees up; if that
// extra read fails the full-window estimate stands.
func (l *SlidingWindowLimiter) resetAt(ctx context.Context, key string, now time.Time, used int64) time.Time {
	fallback := now.Add(l.policy.Window)
	if used < l.policy.MaxUnits {
		return fallback
	}

	_, oldest, err := l.store.SortedSetOldest(ctx, key)
	if err != nil {
		return fallback
	}
	return time.Unix(int64(oldest), 0).Add(l.policy.Window)
}
