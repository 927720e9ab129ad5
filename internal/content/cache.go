package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5minanswer/questionai/internal/storage"
)

// Cache stores extracted chapter text. A miss is ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

func cacheKey(ref ChapterRef) string {
	return fmt.Sprintf("%d/%s/%d", ref.ClassLevel, strings.ToLower(ref.Subject), ref.Chapter)
}

const redisKeyPrefix = "content:chapter:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string) error {
	return c.client.Set(ctx, redisKeyPrefix+key, text, c.ttl).Err()
}

// BlobCache keeps chapter text in a blob store. Entries never expire;
// chapters are static once published.
type BlobCache struct {
	store storage.BlobStore
}

func NewBlobCache(store storage.BlobStore) *BlobCache {
	return &BlobCache{store: store}
}

func (c *BlobCache) Get(ctx context.Context, key string) (string, bool, error) {
	rc, err := c.store.Get(ctx, blobKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (c *BlobCache) Set(ctx context.Context, key, text string) error {
	_, err := c.store.Put(ctx, blobKey(key), strings.NewReader(text))
	return err
}

func blobKey(key string) string { return "chapters/" + key + ".txt" }
