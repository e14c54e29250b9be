package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	prev := GetClient()
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(prev) })

	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var out cachedThing
	found, err := GetJSON(ctx, "missing", &out)
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "thing:1", cachedThing{ID: 1, Name: "denim jacket"}, time.Minute))

	found, err = GetJSON(ctx, "thing:1", &out)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{ID: 1, Name: "denim jacket"}, out)
}

func TestAsideFetchesOnMissAndCaches(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			fetches++
			*dest = cachedThing{ID: 7, Name: "linen shirt"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, uint(7), first.ID)

	// second call is served from the cache
	var second cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "linen shirt", second.Name)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	wantErr := errors.New("store down")
	var out cachedThing
	err := Aside(ctx, "thing:9", &out, time.Minute, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	// nothing cached on failed fetch
	found, err := GetJSON(ctx, "thing:9", &out)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	prev := GetClient()
	SetClient(nil)
	t.Cleanup(func() { SetClient(prev) })

	ctx := context.Background()
	var out cachedThing

	found, err := GetJSON(ctx, "k", &out)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "k", out, time.Minute))

	// Aside always falls through to fetch
	called := false
	assert.NoError(t, Aside(ctx, "k", &out, time.Minute, func() error { called = true; return nil }))
	assert.True(t, called)
}

func TestInvalidatePost(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(3), cachedThing{ID: 3}, time.Minute))
	require.NoError(t, SetJSON(ctx, FeedKey(), []cachedThing{{ID: 3}}, time.Minute))

	InvalidatePost(ctx, 3)

	assert.False(t, mr.Exists(PostKey(3)))
	assert.False(t, mr.Exists(FeedKey()))
}
