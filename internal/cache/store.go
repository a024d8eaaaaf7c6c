// Package cache holds short-lived keys with expiry: the signup resend
// cooldown and the failed confirmation attempt counters, in Redis when
// configured and in process memory otherwise.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown claims a key for a period. Acquire reports false while an
// earlier claim on the same key is still live. Release drops a claim
// early.
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Counter counts events per key. The window starts with the first hit.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Store is everything the auth flow keeps outside the database.
type Store interface {
	Cooldown
	Counter
}

const (
	cooldownPrefix = "yamdb:cooldown:"
	counterPrefix  = "yamdb:attempts:"
)

// RedisStore keeps claims with SET NX PX and counters with INCR.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (c *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, cooldownPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire cooldown %s: %w", key, err)
	}
	return ok, nil
}

func (c *RedisStore) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cooldownPrefix+key).Err(); err != nil {
		return fmt.Errorf("release cooldown %s: %w", key, err)
	}
	return nil
}

func (c *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, counterPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	if n == 1 {
		if err := c.client.Expire(ctx, counterPrefix+key, ttl).Err(); err != nil {
			return n, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n, nil
}

func (c *RedisStore) Reset(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, counterPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// NewRedisClient parses a Redis URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

const sweepThreshold = 1024

type counter struct {
	n     int64
	until time.Time
}

// MemoryStore keeps claims and counters in maps. Expired entries are
// dropped lazily.
type MemoryStore struct {
	mu       sync.Mutex
	claims   map[string]time.Time
	counters map[string]counter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		claims:   make(map[string]time.Time),
		counters: make(map[string]counter),
		now:      time.Now,
	}
}

func (c *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if until, ok := c.claims[key]; ok && now.Before(until) {
		return false, nil
	}
	c.claims[key] = now.Add(ttl)

	// sweep so the map does not grow with one-off keys
	if len(c.claims) > sweepThreshold {
		for k, until := range c.claims {
			if !now.Before(until) {
				delete(c.claims, k)
			}
		}
	}
	return true, nil
}

func (c *MemoryStore) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.claims, key)
	return nil
}

func (c *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cur, ok := c.counters[key]
	if !ok || !now.Before(cur.until) {
		cur = counter{until: now.Add(ttl)}
	}
	cur.n++
	c.counters[key] = cur

	if len(c.counters) > sweepThreshold {
		for k, v := range c.counters {
			if !now.Before(v.until) {
				delete(c.counters, k)
			}
		}
	}
	return cur.n, nil
}

func (c *MemoryStore) Reset(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counters, key)
	return nil
}
