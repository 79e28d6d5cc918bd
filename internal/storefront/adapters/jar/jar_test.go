package jar_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/adapters/jar"
	"storefront/internal/storefront/ports/credentials"
	"storefront/pkg/db/redis"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRedisJar(t *testing.T, clock *fakeClock) (*jar.RedisJar, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	cfg, err := redis.ConfigFromAddress(s.Addr())
	require.NoError(t, err)

	client, err := redis.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return jar.NewRedisJar(client, "test:", clock.Now), s
}

func TestJars(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func(t *testing.T, clock *fakeClock) (credentials.Jar, func(time.Duration)){
		"memory": func(t *testing.T, clock *fakeClock) (credentials.Jar, func(time.Duration)) {
			return jar.NewMemoryJar(clock.Now), clock.Advance
		},
		"redis": func(t *testing.T, clock *fakeClock) (credentials.Jar, func(time.Duration)) {
			j, s := newRedisJar(t, clock)
			return j, func(d time.Duration) {
				clock.Advance(d)
				s.FastForward(d)
			}
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			t.Run("set and get before expiry", func(t *testing.T) {
				clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
				j, _ := build(t, clock)

				require.NoError(t, j.Set(ctx, "accessToken", "abc", clock.Now().Add(time.Minute)))

				value, ok, err := j.Get(ctx, "accessToken")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "abc", value)
			})

			t.Run("value disappears after expiry", func(t *testing.T) {
				clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
				j, advance := build(t, clock)

				require.NoError(t, j.Set(ctx, "accessToken", "abc", clock.Now().Add(time.Minute)))
				advance(2 * time.Minute)

				_, ok, err := j.Get(ctx, "accessToken")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("already expired value is not stored", func(t *testing.T) {
				clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
				j, _ := build(t, clock)

				require.NoError(t, j.Set(ctx, "refreshToken", "old", clock.Now().Add(time.Hour)))
				require.NoError(t, j.Set(ctx, "refreshToken", "new", clock.Now().Add(-time.Second)))

				_, ok, err := j.Get(ctx, "refreshToken")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("delete", func(t *testing.T) {
				clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
				j, _ := build(t, clock)

				require.NoError(t, j.Set(ctx, "a", "1", clock.Now().Add(time.Hour)))
				require.NoError(t, j.Set(ctx, "b", "2", clock.Now().Add(time.Hour)))
				require.NoError(t, j.Delete(ctx, "a", "b", "missing"))

				_, okA, _ := j.Get(ctx, "a")
				_, okB, _ := j.Get(ctx, "b")
				assert.False(t, okA)
				assert.False(t, okB)
			})
		})
	}
}

func TestRedisJarUsesPrefixAndTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	j, s := newRedisJar(t, clock)

	require.NoError(t, j.Set(context.Background(), "isAdmin", "true", clock.Now().Add(30*time.Minute)))

	assert.True(t, s.Exists("test:isAdmin"))
	assert.Equal(t, 30*time.Minute, s.TTL("test:isAdmin"))
}
