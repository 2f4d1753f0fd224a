package tokengate

import (
	"context"
	"fmt"
	"time"

	"github.com/tokengate/tokengate/store"
)

// Outcome reports whether a Result reflects real accounting state or a
// fail-open placeholder returned because the backing store was unreachable.
type Outcome int

const (
	// OutcomeEnforced means the result was computed from the store.
	OutcomeEnforced Outcome = iota
	// OutcomeDegraded means the store failed and the request was allowed
	// without accounting. Degraded results always have Blocked=false.
	OutcomeDegraded
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	if o == OutcomeDegraded {
		return "degraded"
	}
	return "enforced"
}

// Result contains the outcome of a rate limit check or increment.
// It provides the necessary data to populate standard rate-limiting HTTP headers.
type Result struct {
	// Limit is the total number of units allowed in the current window.
	Limit int64
	// Used is the number of units consumed in the current window,
	// including the cost of the call that produced this result.
	Used int64
	// Remaining is the number of units left in the current window.
	// Always max(0, Limit-Used).
	Remaining int64
	// ResetAt is when the current window expires.
	ResetAt time.Time
	// Blocked is true when Used exceeds Limit. Usage equal to the limit
	// exactly is not blocked; only usage strictly above it is.
	Blocked bool
	// Outcome tags whether this result was enforced or degraded (fail-open).
	Outcome Outcome
}

// Err converts a blocked result into ErrExceeded for callers that prefer
// error-style flow. Allowed and degraded results return nil.
func (r Result) Err() error {
	if r.Blocked {
		return ErrExceeded
	}
	return nil
}

// Limiter is the interface for rate-limiting algorithms.
// It is the primary interface that middleware and callers interact with.
//
// Implementations never return an error for store failures: the store is an
// availability optimization, not a security boundary, so on store failure
// they return a degraded, allowing Result instead (fail-open). Errors are
// reserved for caller contract violations such as an empty identity or a
// negative cost.
type Limiter interface {
	// Check reports the current quota state for identity without recording
	// any usage. Use it to gate an expensive operation before running it.
	Check(ctx context.Context, identity string) (Result, error)

	// Increment records cost units of usage for identity and returns the
	// post-increment quota state. For request-counting limiters the cost is
	// ignored and each call counts as one request.
	Increment(ctx context.Context, identity string, cost int64) (Result, error)
}

// MeterKind selects what a limiter meters: discrete requests or a numeric
// token cost. Both kinds share Policy and Result; only the accounting
// algorithm differs.
type MeterKind int

const (
	// MeterTokenCost accumulates a numeric cost in a fixed window anchored
	// at first use.
	MeterTokenCost MeterKind = iota
	// MeterCount counts discrete requests in a true sliding window.
	MeterCount
)

// New creates a limiter for the given meter kind. MeterTokenCost returns a
// fixed-window token limiter, MeterCount a sliding-window request limiter.
func New(kind MeterKind, st store.Store, policy Policy, opts ...LimiterOption) (Limiter, error) {
	switch kind {
	case MeterTokenCost:
		return NewFixedWindow(st, policy, opts...)
	case MeterCount:
		return NewSlidingWindow(st, policy, opts...)
	default:
		return nil, fmt.Errorf("unknown meter kind %d", kind)
	}
}

// Recorder receives allow/block/degrade events for observability.
// The metrics package provides a Prometheus-backed implementation.
type Recorder interface {
	// Allowed is called for every enforced result that is not blocked.
	Allowed(policy string)
	// Blocked is called for every enforced result that is blocked.
	Blocked(policy string)
	// Degraded is called whenever a store failure forces a fail-open result.
	Degraded(policy string)
}

// noopRecorder discards all events. Used when no Recorder is configured.
type noopRecorder struct{}

func (noopRecorder) Allowed(string)  {}
func (noopRecorder) Blocked(string)  {}
func (noopRecorder) Degraded(string) {}

// limiterConfig holds the shared knobs of both limiter variants.
type limiterConfig struct {
	logger   Logger
	recorder Recorder
	now      func() time.Time
}

// LimiterOption configures a limiter at construction time.
type LimiterOption func(*limiterConfig)

func newLimiterConfig(opts ...LimiterOption) *limiterConfig {
	cfg := &limiterConfig{
		logger:   &noopLogger{},
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger sets the logger used for fail-open warnings and debug output.
func WithLogger(l Logger) LimiterOption {
	return func(c *limiterConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the observability recorder for allow/block/degrade events.
func WithRecorder(r Recorder) LimiterOption {
	return func(c *limiterConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithClock overrides the wall clock. Intended for tests that need
// deterministic window rollover.
func WithClock(now func() time.Time) LimiterOption {
	return func(c *limiterConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// record routes a finished result to the configured recorder.
func (c *limiterConfig) record(policy Policy, r Result) {
	switch {
	case r.Outcome == OutcomeDegraded:
		c.recorder.Degraded(policy.KeyPrefix)
	case r.Blocked:
		c.recorder.Blocked(policy.KeyPrefix)
	default:
		c.recorder.Allowed(policy.KeyPrefix)
	}
}

// degraded builds the fail-open result for a store failure: full remaining
// quota, not blocked, reset one window from now.
func degraded(policy Policy, now time.Time) Result {
	return Result{
		Limit:     policy.MaxUnits,
		Used:      0,
		Remaining: policy.MaxUnits,
		ResetAt:   now.Add(policy.Window),
		Blocked:   false,
		Outcome:   OutcomeDegraded,
	}
}

// enforced builds a normal result from a used count and window reset time.
func enforced(policy Policy, used int64, resetAt time.Time) Result {
	remaining := policy.MaxUnits - used
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Limit:     policy.MaxUnits,
		Used:      used,
		Remaining: remaining,
		ResetAt:   resetAt,
		Blocked:   used > policy.MaxUnits,
		Outcome:   OutcomeEnforced,
	}
}
