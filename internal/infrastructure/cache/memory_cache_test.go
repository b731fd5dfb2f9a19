package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

type countingObserver struct{ hits, misses, evictions int }

func (o *countingObserver) CacheHit(string)      { o.hits++ }
func (o *countingObserver) CacheMiss(string)     { o.misses++ }
func (o *countingObserver) CacheEviction(string) { o.evictions++ }

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	c := NewMemoryCache("products", 10, 1024, nil, WithObserver(obs))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("value"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), v)

	v[0] = 'X'
	v, _, _ = c.Get(ctx, "k")
	assert.Equal(t, []byte("value"), v)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Items)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewMemoryCache("products", 10, 1024, nil, WithClock(clock.now))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

	clock.advance(2 * time.Second)
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)

	clock.advance(2 * time.Hour)
	assert.Equal(t, 1, c.sweep())
	assert.Zero(t, c.Stats().Items)
	assert.Zero(t, c.Stats().Bytes)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	c := NewMemoryCache("products", 2, 1024, nil, WithObserver(obs))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Minute))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.Equal(t, 1, obs.evictions)
}

func TestMemoryCache_ByteBudget(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("products", 100, 10, nil)

	require.NoError(t, c.Set(ctx, "big", make([]byte, 64), time.Minute))
	assert.Zero(t, c.Stats().Items)

	require.NoError(t, c.Set(ctx, "a", []byte("12345"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("12345"), time.Minute))
	assert.Equal(t, 1, c.Stats().Items)
	assert.LessOrEqual(t, c.Stats().Bytes, int64(10))
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("products", 10, 1024, nil)

	for _, k := range []string{"products:all", "products:tops", "orders:u1"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
	}

	require.NoError(t, c.Delete(ctx, "orders:u1"))
	require.NoError(t, c.Clear(ctx, "products:"))
	assert.Zero(t, c.Stats().Items)

	require.NoError(t, c.Set(ctx, "x", []byte("1"), time.Minute))
	require.NoError(t, c.Clear(ctx, ""))
	assert.Zero(t, c.Stats().Items)
}

func TestMemoryCache_RunStopsWithContext(t *testing.T) {
	c := NewMemoryCache("products", 10, 1024, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
