package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Basic(t *testing.T) {
	c := NewLRU(100)

	c.Set("a", make([]byte, 40))
	c.Set("b", make([]byte, 40))
	assert.Equal(t, int64(80), c.Size())

	_, ok := c.Get("a") // a is now the most recent
	require.True(t, ok)

	c.Set("c", make([]byte, 40))
	_, ok = c.Get("b")
	assert.False(t, ok, "the least recently used entry is evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	hits, misses, evictions := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(1), evictions)
}

func TestLRU_EdgeCases(t *testing.T) {
	c := NewLRU(50)

	c.Set("big", make([]byte, 60))
	_, ok := c.Get("big")
	assert.False(t, ok, "entries above the capacity are not cached")

	c.Set("k", make([]byte, 10))
	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	c.Set("k", make([]byte, 60))
	_, ok = c.Get("k")
	assert.False(t, ok, "an oversized update drops the entry")
	assert.Equal(t, int64(0), c.Size())
}

func TestLRU_GrowingUpdateEvictsOthers(t *testing.T) {
	c := NewLRU(50)
	c.Set("a", make([]byte, 20))
	c.Set("b", make([]byte, 20))
	c.Set("b", make([]byte, 45))

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Len(t, v, 45)
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU(100)
	c.Set("postings/a", []byte("a"))
	c.Set("postings/b", []byte("b"))
	c.Set("catalog", []byte("c"))

	c.Remove("postings/a")
	_, ok := c.Get("postings/a")
	assert.False(t, ok)

	c.RemovePrefix("postings/")
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("catalog")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Size())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU(1 << 10)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				key := fmt.Sprintf("k%d", (g*31+i)%64)
				c.Set(key, make([]byte, 32))
				c.Get(key)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), int64(1<<10))
}
