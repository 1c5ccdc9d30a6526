package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/shared/storage/cache"
)

func TestRedisSetGetWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedis(cache.RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Set(ctx, "analysis:abc", []byte(`{"id":"abc"}`), time.Hour))

	got, err := store.Get(ctx, "analysis:abc")
	require.NoError(t, err)
	require.Equal(t, `{"id":"abc"}`, string(got))
	require.Equal(t, time.Hour, mr.TTL("analysis:abc"))

	mr.FastForward(time.Hour + time.Second)
	_, err = store.Get(ctx, "analysis:abc")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedis(cache.RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })

	_, err := store.Get(context.Background(), "analysis:none")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisErrorsAreNotMasked(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedis(cache.RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	mr.SetError("ERR backend unavailable")
	_, err := store.Get(ctx, "analysis:x")
	require.Error(t, err)
	require.NotErrorIs(t, err, cache.ErrNotFound)
}
