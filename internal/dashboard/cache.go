package dashboard

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// ViewCache stores encoded responses by request key.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopCache) Set(context.Context, string, []byte)        {}

// RedisCache keeps encoded responses in Redis for ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// OpenRedisCache connects to addr. An empty addr disables caching.
func OpenRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (ViewCache, error) {
	if addr == "" {
		return NopCache{}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NopCache{}, err
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "dashweb:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ViewCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		logging.LogError("dashboard", "view cache get", err)
		metrics.ViewCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ViewCacheTotal.WithLabelValues("hit").Inc()
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, c.prefix+key, body, c.ttl).Err(); err != nil {
		logging.LogError("dashboard", "view cache set", err)
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }

// CloseCache releases c when it holds a connection.
func CloseCache(c ViewCache) error {
	if cl, ok := c.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
