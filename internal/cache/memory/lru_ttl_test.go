package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUTTLEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUTTL[string, int](2, 0, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	_, _ = c.Get("a")
	c.Set("c", 3, 0)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUTTLByteBudget(t *testing.T) {
	c := NewLRUTTL[string, string](10, 10, time.Minute)
	c.Set("a", "x", 6)
	c.Set("b", "y", 6)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 6, c.Bytes())
}

func TestLRUTTLExpires(t *testing.T) {
	c := NewLRUTTL[string, int](4, 0, 10*time.Millisecond)
	c.Set("a", 1, 0)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUTTLGetOrLoad(t *testing.T) {
	c := NewLRUTTL[string, int](4, 0, time.Minute)
	calls := 0
	load := func() (int, int, error) {
		calls++
		return 42, 1, nil
	}
	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad("bad", func() (int, int, error) { return 0, 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestLRUTTLNilSafe(t *testing.T) {
	var c *LRUTTL[string, int]
	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
