package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5minanswer/questionai/internal/storage"
)

type countingFetcher struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, ref ChapterRef) (string, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return "", f.err
	}
	return "text of " + ref.String(), nil
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	_, ok, err := c.Get(ctx, "10/physics/1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "10/physics/1", "hello"))
	got, ok, err := c.Get(ctx, "10/physics/1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"10/physics/1"))

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "10/physics/1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlobCache(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	c := NewBlobCache(fs)

	_, ok, err := c.Get(ctx, "9/maths/2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "9/maths/2", "algebra"))
	got, ok, err := c.Get(ctx, "9/maths/2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "algebra", got)
}

func TestCachedFetcherHitsCacheAfterFirstFetch(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t)
	up := &countingFetcher{}
	f := NewCachedFetcher(up, c, nil)
	ref := ChapterRef{ClassLevel: 10, Subject: "Physics", Chapter: 1}

	for i := 0; i < 3; i++ {
		text, err := f.Fetch(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, "text of class 10 Physics chapter 1", text)
	}
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestCachedFetcherCollapsesConcurrentFetches(t *testing.T) {
	c, _ := newRedisCache(t)
	up := &countingFetcher{delay: 100 * time.Millisecond}
	f := NewCachedFetcher(up, c, nil)
	ref := ChapterRef{ClassLevel: 11, Subject: "chemistry", Chapter: 4}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(context.Background(), ref)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestCachedFetcherDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t)
	up := &countingFetcher{err: ErrContentUnavailable}
	f := NewCachedFetcher(up, c, nil)
	ref := ChapterRef{ClassLevel: 12, Subject: "hindi", Chapter: 1}

	_, err := f.Fetch(ctx, ref)
	assert.True(t, errors.Is(err, ErrContentUnavailable))
	_, err = f.Fetch(ctx, ref)
	assert.Error(t, err)
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestCachedFetcherSurvivesBrokenCache(t *testing.T) {
	c, mr := newRedisCache(t)
	mr.Close()
	up := &countingFetcher{}
	f := NewCachedFetcher(up, c, nil)

	text, err := f.Fetch(context.Background(), ChapterRef{ClassLevel: 9, Subject: "english", Chapter: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
