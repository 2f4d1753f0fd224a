package tokengate

import "errors"

// ErrExceeded is a sentinel error returned when the rate limit is surpassed.
// It can be used by custom error handlers to check for this specific condition.
var ErrExceeded = errors.New("rate limit exceeded")

// ErrEmptyIdentity is returned when a caller passes an empty identity.
// Callers must supply a stable fallback identity (ClientIdentity does this)
// so the limiter is never unkeyed.
var ErrEmptyIdentity = errors.New("identity cannot be empty")

// ErrNegativeCost is returned when a caller passes a negative cost.
// Negative costs are rejected rather than clamped: silently charging a
// negative amount would inflate the remaining quota.
var ErrNegativeCost = errors.New("cost cannot be negative")

// ErrInvalidPolicy is returned by Policy.Validate for a policy with a
// non-positive quota or window, or an empty key prefix.
var ErrInvalidPolicy = errors.New("invalid rate limit policy")
