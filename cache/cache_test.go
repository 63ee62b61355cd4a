package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econdash/model"
)

func sample() []model.Observation {
	return []model.Observation{
		{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Value: 100},
		{Date: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Value: 110.5},
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTTLCacheRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	clock := &fakeClock{t: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}

	c := NewTTLCache(mem, 0, nil)
	c.SetClock(clock.now)
	assert.Equal(t, DefaultTTL, c.TTL())

	data := sample()
	c.SetCachedData(ctx, "x", data)
	assert.Equal(t, data, c.GetCachedData(ctx, "x"))

	// 返回的是副本
	got := c.GetCachedData(ctx, "x")
	got[0].Value = -1
	assert.Equal(t, 100.0, c.GetCachedData(ctx, "x")[0].Value)

	clock.t = clock.t.Add(DefaultTTL - time.Second)
	assert.NotNil(t, c.GetCachedData(ctx, "x"))

	clock.t = clock.t.Add(2 * time.Second)
	e, ok := c.Peek(ctx, "x")
	require.True(t, ok)
	assert.False(t, c.Fresh(e))

	assert.Nil(t, c.GetCachedData(ctx, "x"))
	_, ok = c.Peek(ctx, "x")
	assert.False(t, ok, "expired entry is removed on read")
	assert.Equal(t, 0, mem.Len())
}

func TestTTLCachePeekKeepsExpiredEntry(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	clock := &fakeClock{t: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTTLCache(mem, time.Hour, nil)
	c.SetClock(clock.now)

	c.SetCachedData(ctx, "gdp", sample())
	clock.t = clock.t.Add(3 * time.Hour)

	for i := 0; i < 2; i++ {
		e, ok := c.Peek(ctx, "gdp")
		require.True(t, ok, "expired entry stays available for stale fallback")
		assert.False(t, c.Fresh(e))
		assert.Len(t, e.Data, 2)
	}
	assert.Equal(t, 1, mem.Len())
}

func TestTTLCacheMissingKey(t *testing.T) {
	c := NewTTLCache(NewMemory(), time.Hour, nil)
	assert.Nil(t, c.GetCachedData(context.Background(), "missing"))
}

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	ts := time.Date(2025, time.March, 3, 4, 5, 6, 0, time.UTC)

	_, ok, err := s.Get(ctx, "chartData_gdp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "chartData_gdp", Entry{Data: sample(), Timestamp: ts}))

	e, ok, err := s.Get(ctx, "chartData_gdp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ts.Equal(e.Timestamp))
	require.Len(t, e.Data, 2)
	assert.True(t, sample()[1].Date.Equal(e.Data[1].Date))
	assert.Equal(t, 110.5, e.Data[1].Value)

	require.NoError(t, s.Delete(ctx, "chartData_gdp"))
	_, ok, err = s.Get(ctx, "chartData_gdp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	roundTrip(t, s)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.NotContains(t, s.path("../../etc/passwd"), "..")
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger("")
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, time.Hour)
	defer s.Close()

	roundTrip(t, s)

	require.NoError(t, s.Set(context.Background(), "k", Entry{Data: sample(), Timestamp: time.Now()}))
	mr.FastForward(2 * time.Hour)
	_, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok, "retention expires the key server-side")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	require.NoError(t, closeFn())

	s, closeFn, err = Open(ctx, Options{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	s, closeFn, err = Open(ctx, Options{Backend: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, closeFn())

	_, _, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}
