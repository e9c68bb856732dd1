package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the store's window arithmetic without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.now
	return store, clock
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		store, _ := newTestStore()
		limiter := New(store, 3, time.Hour)

		for i := 0; i < 3; i++ {
			d, err := limiter.Attempt(ctx, "user-1")
			require.NoError(t, err)
			assert.True(t, d.Allowed, "attempt %d", i+1)
			assert.Equal(t, 2-i, d.Remaining)
		}

		d, err := limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
		assert.Equal(t, time.Hour, d.RetryAfter)
	})

	t.Run("denied attempts do not extend the window", func(t *testing.T) {
		store, clock := newTestStore()
		limiter := New(store, 1, time.Hour)

		_, err := limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)

		// Hammering while denied must not push the reset point out.
		for i := 0; i < 5; i++ {
			clock.advance(10 * time.Minute)
			d, err := limiter.Attempt(ctx, "user-1")
			require.NoError(t, err)
			assert.False(t, d.Allowed)
		}

		clock.advance(11 * time.Minute) // 61m past window start
		d, err := limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("window elapse resets the count", func(t *testing.T) {
		store, clock := newTestStore()
		limiter := New(store, 2, 15*time.Minute)

		for i := 0; i < 2; i++ {
			d, err := limiter.Attempt(ctx, "user-1")
			require.NoError(t, err)
			require.True(t, d.Allowed)
		}

		clock.advance(15*time.Minute + time.Second)

		d, err := limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1, d.Remaining)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		store, _ := newTestStore()
		limiter := New(store, 1, time.Hour)

		d, err := limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, d.Allowed)

		d, err = limiter.Attempt(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)

		d, err = limiter.Attempt(ctx, "user-2")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("sweep drops idle expired keys", func(t *testing.T) {
		store, clock := newTestStore()
		limiter := New(store, 5, time.Minute)

		for _, key := range []string{"a", "b", "c"} {
			_, err := limiter.Attempt(ctx, key)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, store.Len())

		clock.advance(2 * time.Minute)
		_, err := limiter.Attempt(ctx, "d")
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("mixed windows on one store sweep independently", func(t *testing.T) {
		store, clock := newTestStore()
		short := New(store, 5, time.Minute)
		long := New(store, 5, time.Hour)

		_, err := short.Attempt(ctx, "short-key")
		require.NoError(t, err)
		_, err = long.Attempt(ctx, "long-key")
		require.NoError(t, err)

		// Past the short window, inside the long one: only the short entry
		// may be evicted.
		clock.advance(5 * time.Minute)
		_, err = short.Attempt(ctx, "probe")
		require.NoError(t, err)

		d, err := long.Attempt(ctx, "long-key")
		require.NoError(t, err)
		assert.Equal(t, 3, d.Remaining)
	})

	t.Run("presets carry documented limits", func(t *testing.T) {
		store, _ := newTestStore()

		general := GeneralAPI(store)
		assert.Equal(t, 100, general.Limit())
		assert.Equal(t, 15*time.Minute, general.Window())

		auth := AuthEndpoints(store)
		assert.Equal(t, 5, auth.Limit())
		assert.Equal(t, 15*time.Minute, auth.Window())

		reset := PasswordReset(store)
		assert.Equal(t, 3, reset.Limit())
		assert.Equal(t, time.Hour, reset.Window())
	})
}
