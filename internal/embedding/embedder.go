// Package embedding provides text embedding backends and a per-model provider cache.
package embedding

import "context"

// Embedder produces unit-normalized vector embeddings for text. Queries and
// documents share the same preprocessing, which must match whatever produced
// the persisted index or search degrades silently.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
