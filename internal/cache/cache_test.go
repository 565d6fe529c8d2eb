package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSetHit(t *testing.T) {
	c := New[string](2)
	c.Set("a", "1")
	v, ok := c.Get("a")
	require := assert.New(t)
	require.True(ok)
	require.Equal("1", v)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string](2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // bump a to front
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestZeroCapacityDisablesCaching(t *testing.T) {
	c := New[string](0)
	c.Set("a", "1")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
