package jobs

import (
	"context"

	"github.com/lexhist/lexhist/internal/cache"
	"github.com/lexhist/lexhist/internal/service"
	"github.com/lexhist/lexhist/internal/store"
	"github.com/sirupsen/logrus"
)

// CacheWarmTask re-primes the article cache with the current version of
// every article of every registered code, so steady-state reads stay off
// the database between amendments.
type CacheWarmTask struct {
	store store.Store
	cache *cache.ArticleCache
	cron  string
}

func NewCacheWarmTask(interval string, store store.Store, cache *cache.ArticleCache) *CacheWarmTask {
	return &CacheWarmTask{
		store: store,
		cache: cache,
		cron:  interval,
	}
}

func (c *CacheWarmTask) ID() string {
	return "cache_warm"
}

func (c *CacheWarmTask) Schedule() string {
	return c.cron
}

func (c *CacheWarmTask) Run() {
	ctx := context.Background()

	codes, err := c.store.ListCodes(ctx)
	if err != nil {
		logrus.Errorf("cache warm: listing codes: %v", err)
		return
	}

	current, notRepealed := true, false
	for _, code := range codes {
		versions, _, err := c.store.ListArticles(ctx, code.ID, store.VersionFilter{
			IsCurrent:  &current,
			IsRepealed: &notRepealed,
		}, 0, 0)
		if err != nil {
			logrus.Errorf("cache warm: listing articles of %s: %v", code.ID, err)
			continue
		}

		for _, version := range versions {
			if err := service.DecodeText(version); err != nil {
				logrus.Warnf("cache warm: decoding %s/%s: %v", version.CodeID, version.Article, err)
				continue
			}
			if err := c.cache.SetCurrent(ctx, version); err != nil {
				logrus.Warnf("cache warm: caching %s/%s: %v", version.CodeID, version.Article, err)
			}
		}

		logrus.Infof("cache warm: primed %d articles for code %s", len(versions), code.ID)
	}
}
