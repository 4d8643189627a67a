package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// articleCacheTTL bounds how long a cached article list is served before the
// quota-limited news API is asked again.
const articleCacheTTL = 24 * time.Hour

// ArticleCache is a Redis-backed cache of raw article lists keyed by
// (symbol, lookback window). Cache failures are never fatal to a fetch: a
// read error behaves like a miss and a write error like a no-op.
type ArticleCache struct {
	client *redis.Client
}

// NewArticleCache connects to the Redis instance at url.
func NewArticleCache(url string) (*ArticleCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &ArticleCache{client: redis.NewClient(opts)}, nil
}

// NewArticleCacheFromClient wraps an existing client (used in tests).
func NewArticleCacheFromClient(client *redis.Client) *ArticleCache {
	return &ArticleCache{client: client}
}

// Get returns the cached article list for key, or ok=false on a miss or any
// cache failure.
func (c *ArticleCache) Get(ctx context.Context, key string) ([]types.Article, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn(ctx, "Article cache read failed", "key", key, "error", err)
		return nil, false
	}

	var articles []types.Article
	if err := json.Unmarshal([]byte(payload), &articles); err != nil {
		logger.Warn(ctx, "Article cache entry corrupt, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return articles, true
}

// Set caches the article list under key with the standard TTL.
func (c *ArticleCache) Set(ctx context.Context, key string, articles []types.Article) {
	payload, err := json.Marshal(articles)
	if err != nil {
		logger.Warn(ctx, "Article cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, articleCacheTTL).Err(); err != nil {
		logger.Warn(ctx, "Article cache write failed", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (c *ArticleCache) Close() error {
	return c.client.Close()
}
