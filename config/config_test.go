package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/tokengate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAnonMaxTokens, EnvAuthMaxTokens, EnvProMaxTokens,
		EnvWindowSeconds, EnvRedisAddr, EnvStoreTimeoutSecs,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultAnonMaxTokens), cfg.AnonMaxTokens)
	assert.Equal(t, int64(DefaultAuthMaxTokens), cfg.AuthMaxTokens)
	assert.Equal(t, int64(DefaultProMaxTokens), cfg.ProMaxTokens)
	assert.Equal(t, time.Hour, cfg.Window)
	assert.Equal(t, DefaultRedisAddr, cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAnonMaxTokens, "1234")
	t.Setenv(EnvWindowSeconds, "600")
	t.Setenv(EnvRedisAddr, "redis.internal:6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1234), cfg.AnonMaxTokens)
	assert.Equal(t, 10*time.Minute, cfg.Window)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	t.Setenv(EnvAnonMaxTokens, "not-a-number")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv(EnvAnonMaxTokens, "-5")
	_, err = Load()
	assert.Error(t, err, "non-positive quotas are a startup error")

	t.Setenv(EnvAnonMaxTokens, "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestPolicySetPrefixesAreDistinct(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	ps := cfg.PolicySet()
	require.NoError(t, ps.Validate())

	seen := map[string]tokengate.Tier{}
	for _, tier := range []tokengate.Tier{tokengate.TierAnonymous, tokengate.TierAuthenticated, tokengate.TierPro} {
		prefix := ps.For(tier).KeyPrefix
		other, dup := seen[prefix]
		assert.False(t, dup, "tiers %s and %s share key prefix %q", tier, other, prefix)
		seen[prefix] = tier
	}
}
