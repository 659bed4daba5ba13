package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLruBasic(t *testing.T) {
	c := NewLruCache[string, int](3, time.Minute)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, ok := c.Get(key)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestLruMiss(t *testing.T) {
	c := NewLruCache[string, int](3, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestLruEviction(t *testing.T) {
	c := NewLruCache[string, int](2, time.Minute)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)

	got, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	got, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestLruAccessOrder(t *testing.T) {
	c := NewLruCache[string, int](2, time.Minute)

	c.Insert("a", 1)
	c.Insert("b", 2)

	// Touch "a" so "b" becomes least recently used.
	c.Get("a")

	c.Insert("c", 3) // evicts "b"

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLruTTLExpiry(t *testing.T) {
	c := NewLruCache[string, int](10, 50*time.Millisecond)

	c.Insert("a", 1)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	time.Sleep(80 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok, "expired entries are dropped on read")
	assert.Equal(t, 0, c.Stats().Size)
}

func TestLruClearExpired(t *testing.T) {
	c := NewLruCache[string, int](10, 50*time.Millisecond)

	c.Insert("a", 1)
	c.Insert("b", 2)
	time.Sleep(80 * time.Millisecond)
	c.Insert("c", 3)

	c.ClearExpired()

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)

	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestLruReinsertRefreshes(t *testing.T) {
	c := NewLruCache[string, int](2, time.Minute)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("a", 10) // refresh, no eviction

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, got)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestLruStats(t *testing.T) {
	c := NewLruCache[string, int](10, time.Minute)

	c.Insert("a", 1)
	c.Insert("b", 2)

	c.Get("a")
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
	assert.Equal(t, uint64(3), stats.TotalAccesses)
}

func TestLruClear(t *testing.T) {
	c := NewLruCache[string, int](10, time.Minute)

	c.Insert("a", 1)
	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestLruConcurrentAccess(t *testing.T) {
	c := NewLruCache[string, int](100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", (n*200+j)%150)
				c.Insert(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Size, 100)
	assert.Greater(t, stats.TotalAccesses, uint64(0))
}
