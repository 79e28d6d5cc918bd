package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *Engine) indexed(tag Tag, key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tagIndex[tag][key]
	return ok
}

func userQuery(calls *int) Query[int, string] {
	return Query[int, string]{
		Name:     "getUser",
		Provides: []Tag{TagUser},
		Fetch: func(context.Context, int) (string, error) {
			*calls++
			return "user", nil
		},
	}
}

func TestExpiredEntryLeavesTagIndex(t *testing.T) {
	e := New(context.Background(), Options{Retention: 20 * time.Millisecond, MaxRetained: 4})
	t.Cleanup(func() { _ = e.Close() })

	calls := 0
	q := userQuery(&calls)
	sub := Subscribe(e, q, 0)
	_, err := Await(context.Background(), sub)
	require.NoError(t, err)

	key := sub.Snapshot().Key
	require.True(t, e.indexed(TagUser, key))
	sub.Unsubscribe()

	require.Eventually(t, func() bool { return !e.indexed(TagUser, key) }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, e.Entries())
}

func TestReleaseKeepsKeyOwnedByNewerEntry(t *testing.T) {
	e := New(context.Background(), Options{Retention: time.Minute, MaxRetained: 4})
	t.Cleanup(func() { _ = e.Close() })

	calls := 0
	q := userQuery(&calls)
	sub := Subscribe(e, q, 0)
	_, err := Await(context.Background(), sub)
	require.NoError(t, err)
	key := sub.Snapshot().Key

	stale := &entry{key: key, tags: []Tag{TagUser}}
	e.release(stale)

	assert.True(t, e.indexed(TagUser, key), "key still belongs to the active entry")
	assert.True(t, stale.dropped)
	assert.Equal(t, 1, e.Invalidate(context.Background(), TagUser))

	_, err = Await(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
