package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string](2, 0)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1", 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2", 0)
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)

	s := c.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Size)
	assert.InDelta(t, 66.6, s.HitRate(), 0.1)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Get("a")
	c.Set("c", 3, 0)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, 0)
	c.Set("b", 2, time.Hour)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestLRUInvalidate(t *testing.T) {
	c := NewLRU[int](10, 0)
	c.Set("sqlite:users", 1, 0)
	c.Set("sqlite:posts", 2, 0)
	c.Set("mysql:users", 3, 0)

	c.Invalidate("mysql:users")
	_, ok := c.Get("mysql:users")
	assert.False(t, ok)

	c.InvalidatePrefix("sqlite:")
	assert.Equal(t, 0, c.Stats().Size)

	c.Set("x", 1, 0)
	c.Clear()
	s := c.Stats()
	assert.Equal(t, 0, s.Size)
	assert.Equal(t, int64(0), s.Hits)
}
