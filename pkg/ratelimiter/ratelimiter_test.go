package ratelimiter_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpmonitor/idvault/pkg/ratelimiter"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newBucket(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Bucket, *ratelimiter.MemoryStore, *clock) {
	t.Helper()
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithCleanupInterval(0),
		ratelimiter.WithIdleTTL(time.Hour),
		ratelimiter.WithStoreClock(clk.Now),
	)
	t.Cleanup(store.Close)
	b, err := ratelimiter.NewBucket(store, cfg, ratelimiter.WithClock(clk.Now))
	require.NoError(t, err)
	return b, store, clk
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill rate", ratelimiter.Config{Capacity: 1, RefillRate: 0, RefillInterval: time.Second}},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(store, tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	t.Run("spends capacity then denies", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute})

		for want := 2; want >= 0; want-- {
			res, err := b.Allow(t.Context(), "k")
			require.NoError(t, err)
			assert.True(t, res.Allowed())
			assert.Equal(t, want, res.Remaining)
			assert.Equal(t, 3, res.Limit)
			assert.Zero(t, res.RetryAfter())
		}

		res, err := b.Allow(t.Context(), "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
		assert.Equal(t, time.Minute, res.RetryAfter())
	})

	t.Run("refills over time", func(t *testing.T) {
		t.Parallel()
		b, _, clk := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})

		for range 2 {
			_, err := b.Allow(t.Context(), "k")
			require.NoError(t, err)
		}
		clk.Advance(30 * time.Second)
		res, err := b.Allow(t.Context(), "k")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
		assert.Equal(t, 30*time.Second, res.RetryAfter())

		clk.Advance(30 * time.Second)
		res, err = b.Allow(t.Context(), "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("long idle refills to capacity only", func(t *testing.T) {
		t.Parallel()
		b, _, clk := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})

		_, err := b.AllowN(t.Context(), "k", 2)
		require.NoError(t, err)
		clk.Advance(24 * time.Hour)

		res, err := b.Status(t.Context(), "k")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		b, store, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

		res, err := b.Allow(t.Context(), "a")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		res, err = b.Allow(t.Context(), "b")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 2, store.Len())
	})

	t.Run("denied request keeps tokens", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})

		res, err := b.AllowN(t.Context(), "k", 3)
		require.NoError(t, err)
		assert.False(t, res.Allowed())

		res, err = b.AllowN(t.Context(), "k", 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})

	t.Run("bad input", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

		_, err := b.Allow(t.Context(), "")
		assert.ErrorIs(t, err, ratelimiter.ErrEmptyKey)
		_, err = b.AllowN(t.Context(), "k", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})

		_, err := b.Allow(t.Context(), "k")
		require.NoError(t, err)
		require.NoError(t, b.Reset(t.Context(), "k"))

		res, err := b.Allow(t.Context(), "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})
}

func TestBucket_Concurrent(t *testing.T) {
	t.Parallel()

	b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Hour})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := b.Allow(t.Context(), "k")
			if err == nil && res.Allowed() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), allowed.Load())
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	b, store, clk := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})

	_, err := b.Allow(t.Context(), "old")
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)
	_, err = b.Allow(t.Context(), "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	store.Close()
	store.Close()
}

func TestLimits(t *testing.T) {
	t.Parallel()

	l := ratelimiter.Limits{ContactBurst: 3, ContactInterval: time.Minute, ClientBurst: 30, ClientInterval: 2 * time.Second}
	assert.Equal(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}, l.Contact())
	assert.Equal(t, ratelimiter.Config{Capacity: 30, RefillRate: 1, RefillInterval: 2 * time.Second}, l.Client())
}
