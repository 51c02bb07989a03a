// Package retrieve binds the vector index to a query embedder for first-stage retrieval.
package retrieve

import (
	"context"
	"fmt"

	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/models"
	"github.com/lioncity/rentqa/internal/vector"
)

// SearchType selects the first-stage search strategy.
type SearchType string

const (
	// SearchSimilarity ranks purely by cosine similarity (the default).
	SearchSimilarity SearchType = "similarity"
	// SearchMMR applies maximum marginal relevance over a larger fetched pool.
	SearchMMR SearchType = "mmr"
)

// Retriever produces the initial candidate set for a query. The index handle,
// k, and search mode are fixed at construction. Retrieval is deterministic for
// a fixed index and query: similarity search has no randomness and the MMR
// selection breaks ties by pool position.
//
// Candidate scores are inner products over unit vectors (cosine similarity),
// higher is more similar.
type Retriever struct {
	handle     *vector.Handle
	embedder   embedding.Embedder
	k          int
	searchType SearchType
	fetchMult  int
	mmrLambda  float64
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithMMR switches the retriever to MMR mode with the given fetch multiplier
// and relevance/diversity tradeoff lambda.
func WithMMR(fetchMultiplier int, lambda float64) Option {
	return func(r *Retriever) {
		r.searchType = SearchMMR
		if fetchMultiplier > 1 {
			r.fetchMult = fetchMultiplier
		}
		if lambda > 0 && lambda <= 1 {
			r.mmrLambda = lambda
		}
	}
}

// NewRetriever creates a retriever over the handle with a fixed k.
func NewRetriever(handle *vector.Handle, embedder embedding.Embedder, k int, opts ...Option) *Retriever {
	r := &Retriever{
		handle:     handle,
		embedder:   embedder,
		k:          k,
		searchType: SearchSimilarity,
		fetchMult:  2,
		mmrLambda:  0.5,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query and returns up to k candidates. Returns
// models.ErrIndexAbsent when no index is loaded and models.ErrModelUnavailable
// when the embedding backend cannot score the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.Candidate, error) {
	idx, ok := r.handle.Get()
	if !ok {
		return nil, models.ErrIndexAbsent
	}
	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", models.ErrModelUnavailable, err)
	}
	if r.searchType == SearchMMR {
		return idx.SearchMMR(ctx, qv, r.k, r.k*r.fetchMult, r.mmrLambda)
	}
	return idx.Search(ctx, qv, r.k)
}
