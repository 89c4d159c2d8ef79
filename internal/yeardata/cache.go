package yeardata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw year documents.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by a redis client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// DefaultCacheTTL is used when no positive ttl is given. Entries always expire.
const DefaultCacheTTL = 24 * time.Hour

// CachingFetcher is a read-through cache in front of another Fetcher. Only
// documents that parse with at least one feature are stored, and a cached entry
// that no longer parses is fetched again. Cache failures fall back to the wrapped
// fetcher and are never returned to the caller.
type CachingFetcher struct {
	next   Fetcher
	cache  Cache
	prefix string
	ttl    time.Duration
}

func NewCachingFetcher(next Fetcher, cache Cache, prefix string, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingFetcher{
		next:   next,
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (f *CachingFetcher) Fetch(ctx context.Context, year int) ([]byte, error) {
	key := f.key(year)

	data, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		_, perr := parseYear(year, data)
		if perr == nil {
			return data, nil
		}
		slog.WarnContext(ctx, "discarding cached year", "year", year, "error", perr)
	case !errors.Is(err, ErrCacheMiss):
		slog.WarnContext(ctx, "reading year cache", "year", year, "error", err)
	}

	data, err = f.next.Fetch(ctx, year)
	if err != nil {
		return nil, err
	}

	// Invalid documents are returned uncached for the loader to reject.
	if _, err := parseYear(year, data); err != nil {
		return data, nil
	}
	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		slog.WarnContext(ctx, "writing year cache", "year", year, "error", err)
	}
	return data, nil
}

func (f *CachingFetcher) key(year int) string {
	return fmt.Sprintf("%s%d", f.prefix, year)
}
