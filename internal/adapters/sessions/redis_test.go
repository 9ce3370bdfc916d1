package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := NewRedisStore(rdb, ttl)
	require.NoError(t, err)
	return store, mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	exerciseStore(t, store)
}

func TestRedisStoreExpiresSessions(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, 30*time.Minute)

	require.NoError(t, store.SetToken(ctx, "s1", "Uber", "tok"))
	assert.Equal(t, 30*time.Minute, mr.TTL(hashKey("s1")))

	mr.FastForward(31 * time.Minute)

	_, ok, err := store.Token(ctx, "s1", "Uber")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreTokenReadExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, 30*time.Minute)

	require.NoError(t, store.SetToken(ctx, "s1", "Uber", "tok"))

	for i := 0; i < 3; i++ {
		mr.FastForward(20 * time.Minute)
		_, ok, err := store.Token(ctx, "s1", "Uber")
		require.NoError(t, err)
		require.True(t, ok, "read %d", i)
		assert.Equal(t, 30*time.Minute, mr.TTL(hashKey("s1")))
	}
}

func TestRedisStoreKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	require.NoError(t, store.SetToken(ctx, "abc", "Uber", "tok"))
	require.NoError(t, store.AddFlash(ctx, "abc", "hello"))

	assert.Equal(t, "tok", mr.HGet("fare:session:abc", "token:Uber"))
	list, err := mr.List("fare:session:abc:flash")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, list)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestNewRedisClientPing(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	_ = rdb.Close()
}
