package cache

import (
	"context"
	"time"

	"github.com/lexhist/lexhist/internal/model"
)

const currentVersionTTL = time.Hour

func currentKey(codeID, article string) string {
	return "article:current:" + codeID + ":" + article
}

// ArticleCache keeps the current version of hot articles in redis. Appends
// invalidate the key after commit, so a stale entry lives at most one TTL.
//
// A nil ArticleCache is valid and misses on every read, which lets the
// services run without redis.
type ArticleCache struct {
	redis *Redis
}

func NewArticleCache(redis *Redis) *ArticleCache {
	return &ArticleCache{redis: redis}
}

func (c *ArticleCache) GetCurrent(ctx context.Context, codeID, article string) (*model.ArticleVersion, error) {
	if c == nil || c.redis == nil {
		return nil, ErrCacheMiss
	}

	var version model.ArticleVersion
	if err := c.redis.Get(ctx, currentKey(codeID, article), &version); err != nil {
		return nil, err
	}

	return &version, nil
}

func (c *ArticleCache) SetCurrent(ctx context.Context, version *model.ArticleVersion) error {
	if c == nil || c.redis == nil {
		return nil
	}

	return c.redis.Set(ctx, currentKey(version.CodeID, version.Article), version, currentVersionTTL)
}

func (c *ArticleCache) Invalidate(ctx context.Context, codeID, article string) error {
	if c == nil || c.redis == nil {
		return nil
	}

	return c.redis.Del(ctx, currentKey(codeID, article))
}
