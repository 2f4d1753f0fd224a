// Package config loads tokengate's runtime configuration from the
// environment. All values have documented defaults; invalid values are
// fatal at startup rather than tolerated per-request.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tokengate/tokengate"
)

// Recognized environment variables and their defaults.
const (
	EnvAnonMaxTokens    = "TOKENGATE_ANON_MAX_TOKENS"
	EnvAuthMaxTokens    = "TOKENGATE_AUTH_MAX_TOKENS"
	EnvProMaxTokens     = "TOKENGATE_PRO_MAX_TOKENS"
	EnvWindowSeconds    = "TOKENGATE_WINDOW_SECONDS"
	EnvRedisAddr        = "TOKENGATE_REDIS_ADDR"
	EnvStoreTimeoutSecs = "TOKENGATE_STORE_TIMEOUT_SECONDS"

	DefaultAnonMaxTokens    = 5000
	DefaultAuthMaxTokens    = 50000
	DefaultProMaxTokens     = 500000
	DefaultWindowSeconds    = 3600
	DefaultRedisAddr        = "localhost:6379"
	DefaultStoreTimeoutSecs = 5
)

// Config is the resolved runtime configuration.
type Config struct {
	AnonMaxTokens int64
	AuthMaxTokens int64
	ProMaxTokens  int64
	Window        time.Duration
	RedisAddr     string
	StoreTimeout  time.Duration
}

// Load reads configuration from the environment, consulting a .env file
// first when one exists (missing files are fine). Parse failures and
// non-positive quotas are returned as errors; callers should treat them as
// fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	anon, err := envInt64(EnvAnonMaxTokens, DefaultAnonMaxTokens)
	if err != nil {
		return nil, err
	}
	auth, err := envInt64(EnvAuthMaxTokens, DefaultAuthMaxTokens)
	if err != nil {
		return nil, err
	}
	pro, err := envInt64(EnvProMaxTokens, DefaultProMaxTokens)
	if err != nil {
		return nil, err
	}
	windowSecs, err := envInt64(EnvWindowSeconds, DefaultWindowSeconds)
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := envInt64(EnvStoreTimeoutSecs, DefaultStoreTimeoutSecs)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AnonMaxTokens: anon,
		AuthMaxTokens: auth,
		ProMaxTokens:  pro,
		Window:        time.Duration(windowSecs) * time.Second,
		RedisAddr:     envString(EnvRedisAddr, DefaultRedisAddr),
		StoreTimeout:  time.Duration(timeoutSecs) * time.Second,
	}
	if err := cfg.PolicySet().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PolicySet builds the tier policy table from the loaded quotas. Key
// prefixes are fixed per tier so anonymous and authenticated accounting
// for the same client never collide.
func (c *Config) PolicySet() tokengate.PolicySet {
	return tokengate.PolicySet{
		tokengate.TierAnonymous: {
			MaxUnits:  c.AnonMaxTokens,
			Window:    c.Window,
			KeyPrefix: "rl:anon:",
		},
		tokengate.TierAuthenticated: {
			MaxUnits:  c.AuthMaxTokens,
			Window:    c.Window,
			KeyPrefix: "rl:auth:",
		},
		tokengate.TierPro: {
			MaxUnits:  c.ProMaxTokens,
			Window:    c.Window,
			KeyPrefix: "rl:pro:",
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer, got %q", key, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
