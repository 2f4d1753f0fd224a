package tokengate

import (
	"context"
	"strconv"
	"time"

	"github.com/tokengate/tokengate/store"
)

// startKeySuffix marks the companion key holding a window's start timestamp.
const startKeySuffix = ":start"

// minWindowTTL is the floor applied to the remaining window TTL on writes.
// A window in its final second must still expire, not live forever with a
// zero or negative TTL.
const minWindowTTL = time.Second

// FixedWindowLimiter meters a numeric cost (typically LLM tokens) in a
// fixed window anchored at first use.
//
// State lives in two companion store keys per identity: the accumulated
// cost and the window start timestamp. Both are written together with the
// remaining window as their TTL, so the store's own expiry is the window
// boundary: when the keys lapse the window has reset, with no cleanup job
// and no separate reset operation that could drift from the data.
//
// The window is not a rolling average. A burst right before an expiry and
// another right after can together exceed twice the quota within a short
// real-time span; that is the accepted price of avoiding a true sliding
// window here.
//
// Increment is a read-modify-write across the two keys, not a single atomic
// instruction, so two concurrent increments for one identity can lose an
// update (both read 10, both write 11). Rate limiting here does not need to
// be exact and the property is covered by tests rather than papered over
// with locks.
type FixedWindowLimiter struct {
	store  store.Store
	policy Policy
	cfg    *limiterConfig
}

// NewFixedWindow creates a fixed-window token-cost limiter.
func NewFixedWindow(st store.Store, policy Policy, opts ...LimiterOption) (*FixedWindowLimiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &FixedWindowLimiter{
		store:  st,
		policy: policy,
		cfg:    newLimiterConfig(opts...),
	}, nil
}

// Check reports the current quota state for identity without mutating the
// store. Repeated checks with no intervening increment report the same
// usage.
func (l *FixedWindowLimiter) Check(ctx context.Context, identity string) (Result, error) {
	if identity == "" {
		return Result{}, ErrEmptyIdentity
	}

	now := l.cfg.now()
	used, windowStart, ok, err := l.load(ctx, identity)
	if err != nil {
		l.cfg.logger.Errorf("fixed window: store read failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}

	resetAt := now.Add(l.policy.Window)
	if ok {
		resetAt = windowStart.Add(l.policy.Window)
	} else {
		// No window start on record means no live window: report zero
		// usage even if a stray used value survived.
		used = 0
	}

	res := enforced(l.policy, used, resetAt)
	l.cfg.record(l.policy, res)
	return res, nil
}

// Increment charges cost units to identity and returns the post-increment
// state. A missing window bootstraps transparently: the first increment
// anchors the window at now. A cost of zero reads without writing, so it
// cannot create keys or extend the TTL.
func (l *FixedWindowLimiter) Increment(ctx context.Context, identity string, cost int64) (Result, error) {
	if identity == "" {
		return Result{}, ErrEmptyIdentity
	}
	if cost < 0 {
		return Result{}, ErrNegativeCost
	}
	if cost == 0 {
		return l.Check(ctx, identity)
	}

	now := l.cfg.now()
	used, windowStart, ok, err := l.load(ctx, identity)
	if err != nil {
		l.cfg.logger.Errorf("fixed window: store read failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}
	if !ok {
		used = 0
		windowStart = now
	}

	newUsed := used + cost
	resetAt := windowStart.Add(l.policy.Window)
	ttl := resetAt.Sub(now)
	if ttl < minWindowTTL {
		ttl = minWindowTTL
	}

	pairs := map[string]string{
		l.policy.key(identity):                  strconv.FormatInt(newUsed, 10),
		l.policy.key(identity) + startKeySuffix: strconv.FormatInt(windowStart.Unix(), 10),
	}
	if err := l.store.SetBatchWithTTL(ctx, pairs, ttl); err != nil {
		l.cfg.logger.Errorf("fixed window: store write failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}

	l.cfg.logger.Debugf("fixed window: %q used %d/%d (+%d)", identity, newUsed, l.policy.MaxUnits, cost)
	res := enforced(l.policy, newUsed, resetAt)
	l.cfg.record(l.policy, res)
	return res, nil
}

// Refund credits cost units back to identity, clamped at zero, without
// touching the window's remaining TTL. Use it to settle the difference when
// usage was charged from an estimate and the real cost came in lower.
// Refunding an identity with no live window is a no-op.
func (l *FixedWindowLimiter) Refund(ctx context.Context, identity string, cost int64) (Result, error) {
	if identity == "" {
		return Result{}, ErrEmptyIdentity
	}
	if cost < 0 {
		return Result{}, ErrNegativeCost
	}

	now := l.cfg.now()
	used, windowStart, ok, err := l.load(ctx, identity)
	if err != nil {
		l.cfg.logger.Errorf("fixed window: store read failed for %q, failing open: %v", identity, err)
		res := degraded(l.policy, now)
		l.cfg.record(l.policy, res)
		return res, nil
	}
	if !ok {
		return enforced(l.policy, 0, now.Add(l.policy.Window)), nil
	}

	newUsed := used - cost
	if newUsed < 0 {
		newUsed = 0
	}

	if cost > 0 {
		// KEEPTTL: the credit must not stretch the window.
		if err := l.store.SetKeepTTL(ctx, l.policy.key(identity), strconv.FormatInt(newUsed, 10)); err != nil {
			l.cfg.logger.Errorf("fixed window: refund write failed for %q, failing open: %v", identity, err)
			res := degraded(l.policy, now)
			l.cfg.record(l.policy, res)
			return res, nil
		}
	}

	return enforced(l.policy, newUsed, windowStart.Add(l.policy.Window)), nil
}

// load reads the used counter and window start in one round trip.
// ok reports whether a live window exists (the start key was present).
// Malformed stored values are treated as absent, not as errors: the window
// silently re-bootstraps rather than wedging an identity.
func (l *FixedWindowLimiter) load(ctx context.Context, identity string) (used int64, windowStart time.Time, ok bool, err error) {
	usedKey := l.policy.key(identity)
	vals, err := l.store.GetBatch(ctx, usedKey, usedKey+startKeySuffix)
	if err != nil {
		return 0, time.Time{}, false, err
	}

	if vals[0] != nil {
		if n, perr := strconv.ParseInt(*vals[0], 10, 64); perr == nil && n >= 0 {
			used = n
		}
	}
	if vals[1] != nil {
		if sec, perr := strconv.ParseInt(*vals[1], 10, 64); perr == nil && sec > 0 {
			windowStart = time.Unix(sec, 0)
			ok = true
		}
	}
	return used, windowStart, ok, nil
}
