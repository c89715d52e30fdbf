package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"trip_planner/internal/adapters/observability"
)

// DefaultTTL matches the in-memory backend.
const DefaultTTL = 3600

// Cache shares provider results across API replicas. Every key is stored
// under ns so Clear never touches keys owned by anything else.
type Cache struct {
	c  *redis.Client
	ns string
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), "trip:")
}

func NewWithClient(c *redis.Client, ns string) *Cache {
	return &Cache{c: c, ns: ns}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.ns+key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttlSec <= 0 {
		ttlSec = DefaultTTL
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, r.ns+key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, r.ns+key).Err()
}

// Clear removes every key in the namespace, scanning in batches.
func (r *Cache) Clear(ctx context.Context) error {
	observability.ObserveCache("redis", "clear")
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, r.ns+"*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
