package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares tenant lookups across processes. Suits deployments with
// several application instances behind one load balancer, where a per-process
// memory cache would multiply store traffic.
type redisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache returns a Cache backed by the given redis client. All keys
// are namespaced under "tenant:".
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client, keyPrefix: "tenant:"}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		// Treat misses and transport errors the same: fall through to the store.
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	// Best effort: a failed cache write only costs a store round-trip later.
	_ = c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, c.keyPrefix+key).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
