package cache

import (
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	c.Set("session:a", 42, gocache.DefaultExpiration)
	v, ok := c.Get("session:a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("session:b")
	assert.False(t, ok)
}

func TestMemoryCache_AddKeepsExisting(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	assert.True(t, c.Add("session:a", "first", gocache.DefaultExpiration))
	assert.False(t, c.Add("session:a", "second", gocache.DefaultExpiration))

	v, _ := c.Get("session:a")
	assert.Equal(t, "first", v)
	assert.Equal(t, 1, c.Count())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	c.Set("session:short", "x", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("session:short")
	assert.False(t, ok)
	assert.True(t, c.Add("session:short", "y", gocache.DefaultExpiration))
}
