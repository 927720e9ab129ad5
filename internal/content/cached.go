package content

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/5minanswer/questionai/internal/logger"
)

// CachedFetcher is a cache-aside decorator. Concurrent fetches of the same
// chapter share one upstream call. Cache errors are logged and ignored.
type CachedFetcher struct {
	next  Fetcher
	cache Cache
	log   *logger.Logger
	group singleflight.Group
}

func NewCachedFetcher(next Fetcher, cache Cache, log *logger.Logger) *CachedFetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedFetcher{next: next, cache: cache, log: log}
}

func (f *CachedFetcher) Fetch(ctx context.Context, ref ChapterRef) (string, error) {
	key := cacheKey(ref)
	if text, ok, err := f.cache.Get(ctx, key); err != nil {
		f.log.Warn("content cache read failed", "key", key, "error", err)
	} else if ok {
		return text, nil
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		text, err := f.next.Fetch(ctx, ref)
		if err != nil {
			return "", err
		}
		if err := f.cache.Set(ctx, key, text); err != nil {
			f.log.Warn("content cache write failed", "key", key, "error", err)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
