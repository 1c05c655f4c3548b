package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/prowriters/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewStoreSelectsDriver(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	store, err := NewStore(lc, &config.Config{Cache: config.Cache{Driver: "noop"}}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, noopStore{}, store)

	store, err = NewStore(lc, &config.Config{Cache: config.Cache{Driver: "redis", Addr: "127.0.0.1:6379", TTL: time.Minute}}, discardLogger())
	require.NoError(t, err)
	redis, ok := store.(*redisStore)
	require.True(t, ok)
	assert.Equal(t, time.Minute, redis.defaultTTL)
	require.NoError(t, redis.client.Close())

	_, err = NewStore(lc, &config.Config{Cache: config.Cache{Driver: "memcached"}}, discardLogger())
	assert.Error(t, err)
}

func TestNoopStore(t *testing.T) {
	var s noopStore
	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, s.Set(context.Background(), "k", []byte("v"), 0))
	assert.NoError(t, s.Delete(context.Background(), "k"))
}

func TestRedisStoreEmptyKeys(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	s := newRedisStore(lc, config.Cache{Addr: "127.0.0.1:1"}, discardLogger())
	defer s.client.Close()

	_, err := s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, s.Set(context.Background(), "", []byte("v"), 0))
	assert.NoError(t, s.Delete(context.Background(), ""))
}
