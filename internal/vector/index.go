// Package vector provides the in-memory chunk index, similarity search, and
// its two-artifact persistence (binary vectors plus a SQLite chunk sidecar).
package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lioncity/rentqa/internal/models"
)

// Index holds document chunks and their embeddings and answers similarity
// queries with brute-force inner product over unit vectors (cosine
// similarity, higher is more similar). Reads may run concurrently; Add takes
// the write lock.
type Index struct {
	dimensions int
	chunks     []models.DocumentChunk
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewIndex creates an empty index with the given dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Index{dimensions: dimensions}, nil
}

// Add appends chunks with their vectors. Chunk i corresponds to vectors[i];
// this pairing is the ordinal mapping the sidecar persists.
func (idx *Index) Add(chunks []models.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i := range chunks {
		if len(vectors[i]) != idx.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), idx.dimensions)
		}
		vec := make([]float32, idx.dimensions)
		copy(vec, vectors[i])
		idx.chunks = append(idx.chunks, chunks[i])
		idx.vectors = append(idx.vectors, vec)
	}
	return nil
}

// Search returns the top-k chunks by inner product with the query vector,
// ordered by descending score. Fewer than k results are returned only when
// the index holds fewer chunks.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]models.Candidate, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), idx.dimensions)
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ordinals, scores := idx.rankLocked(query, k)
	results := make([]models.Candidate, len(ordinals))
	for i, ord := range ordinals {
		results[i] = models.Candidate{Chunk: idx.chunks[ord], Score: scores[i]}
	}
	return results, nil
}

// rankLocked returns the ordinals and scores of the top-k vectors by inner
// product, descending. Ties keep insertion order, so results are deterministic
// for a fixed index and query. Caller must hold at least the read lock.
func (idx *Index) rankLocked(query []float32, k int) ([]int, []float64) {
	if k <= 0 || len(idx.chunks) == 0 {
		return nil, nil
	}
	type scored struct {
		ord   int
		score float64
	}
	all := make([]scored, len(idx.vectors))
	for i, vec := range idx.vectors {
		all[i] = scored{ord: i, score: InnerProduct(query, vec)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if k > len(all) {
		k = len(all)
	}
	ordinals := make([]int, k)
	scores := make([]float64, k)
	for i := 0; i < k; i++ {
		ordinals[i] = all[i].ord
		scores[i] = all[i].score
	}
	return ordinals, scores
}

// Size returns the number of stored chunks.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Dimensions returns the vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// snapshot returns copies of the chunk and vector slices for persistence.
func (idx *Index) snapshot() ([]models.DocumentChunk, [][]float32) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	chunks := make([]models.DocumentChunk, len(idx.chunks))
	copy(chunks, idx.chunks)
	vectors := make([][]float32, len(idx.vectors))
	copy(vectors, idx.vectors)
	return chunks, vectors
}
