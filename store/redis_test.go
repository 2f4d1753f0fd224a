package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedisStore connects to the Redis named by TOKENGATE_TEST_REDIS, or
// skips the test when the variable is unset. These are integration tests;
// the unit suite runs without any external service.
func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("TOKENGATE_TEST_REDIS")
	if addr == "" {
		t.Skip("set TOKENGATE_TEST_REDIS to run Redis integration tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis at %s not reachable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client)
}

// testKey namespaces integration keys so parallel runs do not collide.
func testKey() string {
	return "tokengate:test:" + uuid.NewString()
}

func TestRedisGetSet(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	key := testKey()

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetWithTTL(ctx, key, "42", time.Minute))
	v, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestRedisSetKeepTTL(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	key := testKey()

	require.NoError(t, s.SetWithTTL(ctx, key, "1", time.Minute))
	require.NoError(t, s.SetKeepTTL(ctx, key, "2"))

	ttl, err := s.client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second, "KEEPTTL must not reset the expiry")

	v, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestRedisBatch(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	a, b := testKey(), testKey()

	require.NoError(t, s.SetBatchWithTTL(ctx, map[string]string{a: "1", b: "2"}, time.Minute))

	vals, err := s.GetBatch(ctx, a, "tokengate:test:missing", b)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	require.NotNil(t, vals[0])
	assert.Equal(t, "1", *vals[0])
	assert.Nil(t, vals[1])
	require.NotNil(t, vals[2])
	assert.Equal(t, "2", *vals[2])
}

func TestRedisSortedSet(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	key := testKey()

	require.NoError(t, s.SortedSetAdd(ctx, key, 100, "m1"))
	require.NoError(t, s.SortedSetAdd(ctx, key, 200, "m2"))
	require.NoError(t, s.Expire(ctx, key, time.Minute))

	card, err := s.SortedSetCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), card)

	member, score, err := s.SortedSetOldest(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "m1", member)
	assert.Equal(t, float64(100), score)

	require.NoError(t, s.SortedSetRemoveRangeByScore(ctx, key, 0, 150))
	card, err = s.SortedSetCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), card)
}
