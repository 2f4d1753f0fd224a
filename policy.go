package tokengate

import (
	"fmt"
	"time"
)

// Tier classifies the caller of a rate-limited operation. The tier is
// derived externally (session/auth layer) and selects which Policy applies.
type Tier string

const (
	TierAnonymous     Tier = "anonymous"
	TierAuthenticated Tier = "authenticated"
	TierPro           Tier = "pro"
)

// Policy is the immutable configuration of one rate limit: how many units
// fit in a window, how long the window lasts, and the key namespace that
// keeps this policy's accounting separate from every other policy's.
//
// Policies are built once at startup from configuration and never mutated.
type Policy struct {
	// MaxUnits is the quota ceiling: a request count or a token count,
	// depending on the meter kind of the limiter using this policy.
	MaxUnits int64
	// Window is the fixed length of the accounting window.
	Window time.Duration
	// KeyPrefix namespaces store keys per policy so that, for example,
	// anonymous and authenticated accounting for the same IP never collide.
	KeyPrefix string
}

// Validate reports whether the policy is usable. A failing policy is a
// configuration error and should be fatal at startup, never tolerated
// per-request.
func (p Policy) Validate() error {
	if p.MaxUnits <= 0 {
		return fmt.Errorf("%w: max units must be positive, got %d", ErrInvalidPolicy, p.MaxUnits)
	}
	if p.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidPolicy, p.Window)
	}
	if p.KeyPrefix == "" {
		return fmt.Errorf("%w: key prefix must not be empty", ErrInvalidPolicy)
	}
	return nil
}

// key builds the store key for an identity under this policy.
func (p Policy) key(identity string) string {
	return p.KeyPrefix + identity
}

// PolicySet maps caller tiers to policies. It is a pure lookup table built
// at startup; selection involves no I/O and no mutation.
type PolicySet map[Tier]Policy

// For returns the policy for a tier, falling back to the anonymous policy
// for unknown tiers so an unrecognized caller always gets the most
// restrictive treatment.
func (ps PolicySet) For(tier Tier) Policy {
	if p, ok := ps[tier]; ok {
		return p
	}
	return ps[TierAnonymous]
}

// Validate checks every policy in the set and requires an anonymous entry,
// since it is the fallback for unknown tiers.
func (ps PolicySet) Validate() error {
	if _, ok := ps[TierAnonymous]; !ok {
		return fmt.Errorf("%w: policy set needs an anonymous policy", ErrInvalidPolicy)
	}
	for tier, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
	}
	return nil
}

// TierLimiters maps caller tiers to constructed limiters. Like PolicySet it
// is built once at startup; For falls back to the anonymous limiter.
type TierLimiters map[Tier]Limiter

// For returns the limiter for a tier, falling back to the anonymous limiter
// for unknown tiers.
func (tl TierLimiters) For(tier Tier) Limiter {
	if l, ok := tl[tier]; ok {
		return l
	}
	return tl[TierAnonymous]
}
