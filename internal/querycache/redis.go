package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "qc:"

// RedisStore shares entries between gateway replicas so a stale mark set by one
// replica (or by the cart-event consumer) is seen by all of them.
type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisStore) Get(ctx context.Context, key Key) (Entry, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrCacheMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get failed: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry failed: %w", err)
	}
	return e, nil
}

func (r *RedisStore) Set(ctx context.Context, key Key, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, redisKey(key), raw, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) MarkStale(ctx context.Context, key Key) error {
	e, err := r.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return err
	}
	e.Stale = true

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry failed: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(key), raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis mark stale failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func redisKey(key Key) string {
	return keyPrefix + string(key)
}
