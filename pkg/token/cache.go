package token

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultCacheTTL = 10 * time.Minute

// RedisCache caches the provider token list in Redis with a TTL. Cache
// failures are logged and treated as misses; the resolver falls through to
// the source.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisCache creates a token-list cache. ttl <= 0 selects the default.
func NewRedisCache(client redis.Cmdable, ttl time.Duration, log *logrus.Logger) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = logrus.New()
	}
	return &RedisCache{client: client, ttl: ttl, log: log}, nil
}

func cacheKey(chainID int64) string {
	return fmt.Sprintf("tokens:%d", chainID)
}

// Get returns the cached token list for a chain, if present.
func (c *RedisCache) Get(ctx context.Context, chainID int64) ([]enso.Token, bool) {
	val, err := c.client.Get(ctx, cacheKey(chainID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("token cache read failed")
		return nil, false
	}

	var tokens []enso.Token
	if err := json.Unmarshal([]byte(val), &tokens); err != nil {
		c.log.WithError(err).Warn("token cache entry corrupt, ignoring")
		return nil, false
	}
	return tokens, true
}

// Set stores the token list for a chain.
func (c *RedisCache) Set(ctx context.Context, chainID int64, tokens []enso.Token) {
	b, err := json.Marshal(tokens)
	if err != nil {
		c.log.WithError(err).Warn("token cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, cacheKey(chainID), b, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("token cache write failed")
	}
}
