package embedding

import (
	"fmt"
	"sync"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d", c.Len())
	}
}

func TestEmbeddingCache_overwrite(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("a", []float32{2})
	v, ok := c.Get("a")
	if !ok || v[0] != 2 {
		t.Errorf("overwrite: got %v", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len=%d", c.Len())
	}
}

// A Get hit bumps the entry's recency, so concurrent readers mutate the LRU
// list. Run with -race.
func TestEmbeddingCache_concurrent(t *testing.T) {
	c := NewEmbeddingCache(16)
	for i := 0; i < 16; i++ {
		c.Set(fmt.Sprintf("key-%d", i), []float32{float32(i)})
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d", (g+i)%16)
				if v, ok := c.Get(key); ok && len(v) != 1 {
					t.Errorf("Get(%s): got %v", key, v)
				}
				if i%50 == 0 {
					c.Set(key, []float32{float32(i)})
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len=%d, want at most 16", c.Len())
	}
}
