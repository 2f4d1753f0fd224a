package tokengate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/store"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy tokengate.Policy
		valid  bool
	}{
		{"valid", tokengate.Policy{MaxUnits: 100, Window: time.Hour, KeyPrefix: "rl:"}, true},
		{"zero quota", tokengate.Policy{MaxUnits: 0, Window: time.Hour, KeyPrefix: "rl:"}, false},
		{"negative quota", tokengate.Policy{MaxUnits: -1, Window: time.Hour, KeyPrefix: "rl:"}, false},
		{"zero window", tokengate.Policy{MaxUnits: 100, Window: 0, KeyPrefix: "rl:"}, false},
		{"empty prefix", tokengate.Policy{MaxUnits: 100, Window: time.Hour, KeyPrefix: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tokengate.ErrInvalidPolicy)
			}
		})
	}
}

func TestPolicySetFallsBackToAnonymous(t *testing.T) {
	anon := tokengate.Policy{MaxUnits: 10, Window: time.Hour, KeyPrefix: "rl:anon:"}
	pro := tokengate.Policy{MaxUnits: 1000, Window: time.Hour, KeyPrefix: "rl:pro:"}
	ps := tokengate.PolicySet{
		tokengate.TierAnonymous: anon,
		tokengate.TierPro:       pro,
	}

	assert.Equal(t, pro, ps.For(tokengate.TierPro))
	assert.Equal(t, anon, ps.For(tokengate.TierAuthenticated), "unknown tier gets the anonymous policy")
	assert.Equal(t, anon, ps.For(tokengate.Tier("bogus")))
}

func TestPolicySetValidate(t *testing.T) {
	err := tokengate.PolicySet{
		tokengate.TierPro: {MaxUnits: 10, Window: time.Hour, KeyPrefix: "rl:pro:"},
	}.Validate()
	assert.ErrorIs(t, err, tokengate.ErrInvalidPolicy, "anonymous policy is required")

	err = tokengate.PolicySet{
		tokengate.TierAnonymous: {MaxUnits: 0, Window: time.Hour, KeyPrefix: "rl:anon:"},
	}.Validate()
	assert.Error(t, err)

	err = tokengate.PolicySet{
		tokengate.TierAnonymous: {MaxUnits: 10, Window: time.Hour, KeyPrefix: "rl:anon:"},
	}.Validate()
	assert.NoError(t, err)
}

func TestTierLimitersFallsBackToAnonymous(t *testing.T) {
	mem := store.NewMemory(context.Background(), 0)
	anon, err := tokengate.NewFixedWindow(mem, tokengate.Policy{MaxUnits: 10, Window: time.Hour, KeyPrefix: "rl:anon:"})
	require.NoError(t, err)

	limiters := tokengate.TierLimiters{tokengate.TierAnonymous: anon}
	assert.Equal(t, tokengate.Limiter(anon), limiters.For(tokengate.TierPro))
}
