package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLRU(size int) (*LRU[string], *time.Time) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string](size)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRUGetSet(t *testing.T) {
	c, now := newTestLRU(2)
	c.Set("a", "1", now.Add(time.Minute))

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Set("past", "x", now.Add(-time.Second))
	assert.Equal(t, 1, c.Len())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, now := newTestLRU(2)
	c.Set("a", "1", now.Add(time.Hour))
	c.Set("b", "2", now.Add(time.Hour))
	c.Get("a")
	c.Set("c", "3", now.Add(time.Hour))

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUExpiry(t *testing.T) {
	c, now := newTestLRU(4)
	c.Set("short", "1", now.Add(time.Minute))
	c.Set("long", "2", now.Add(time.Hour))

	*now = now.Add(2 * time.Minute)
	_, ok := c.Get("short")
	assert.False(t, ok)

	c.Set("soon", "3", now.Add(time.Second))
	*now = now.Add(time.Second)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Len())

	c.Delete("long")
	assert.Equal(t, 0, c.Len())
}
