package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_GetSet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	err := store.Set(ctx, "cart:u1:active", Entry{Data: []byte(`{"id":"c1"}`), UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKey("cart:u1:active")))

	e, err := store.Get(ctx, "cart:u1:active")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"c1"}`), e.Data)
	assert.False(t, e.Stale)
	assert.True(t, now.Equal(e.UpdatedAt))
}

func TestRedisStore_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStore_InvalidEnvelope(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(redisKey("k"), "{not json"))

	_, err := store.Get(context.Background(), "k")
	require.ErrorContains(t, err, "unmarshal entry failed")
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, store.Set(context.Background(), "k", Entry{Data: []byte(`1`)}))

	ttl := mr.TTL(redisKey("k"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be base + max jitter")
}

func TestRedisStore_MarkStaleKeepsDataAndTTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", Entry{Data: []byte(`{"total_items":2}`)}))
	ttlBefore := mr.TTL(redisKey("k"))

	require.NoError(t, store.MarkStale(ctx, "k"))

	e, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, e.Stale)
	assert.Equal(t, []byte(`{"total_items":2}`), e.Data)
	assert.Equal(t, ttlBefore, mr.TTL(redisKey("k")))
}

func TestRedisStore_MarkStaleMissingKey(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, store.MarkStale(context.Background(), "k"))
	assert.False(t, mr.Exists(redisKey("k")))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", Entry{Data: []byte(`1`)}))

	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists(redisKey("k")))
}
