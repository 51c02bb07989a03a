package rerank

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/models"
)

// Reranker rescores first-stage candidates with the pairwise model and keeps
// the top-K by relevance. The scorer is expensive to load, so it is
// constructed once on first use and shared for the life of the process;
// concurrent Rerank calls are safe.
type Reranker struct {
	cfg *config.RerankConfig

	once   sync.Once
	scorer Scorer
	initE  error
}

// NewReranker creates a reranker; the underlying model loads lazily.
func NewReranker(cfg *config.RerankConfig) *Reranker {
	return &Reranker{cfg: cfg}
}

// Rerank scores every candidate against the query and returns at most topK
// chunks ordered by descending relevance. Candidate content is truncated to
// the configured bound for scoring only, which bounds model latency without
// changing which chunks are considered or what they contain.
//
// An empty candidate set returns empty without touching the model. A scoring
// failure is a hard failure of the query (models.ErrModelUnavailable), never
// an empty result: an empty result here means "not covered", which a backend
// outage is not.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []models.Candidate, topK int) ([]models.DocumentChunk, error) {
	if len(candidates) == 0 || topK <= 0 {
		return []models.DocumentChunk{}, nil
	}

	scorer, err := r.getScorer()
	if err != nil {
		return nil, fmt.Errorf("%w: reranker init: %v", models.ErrModelUnavailable, err)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = truncateForScoring(c.Chunk.Content, r.cfg.MaxContentChars)
	}

	scoreCtx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()
	scores, err := scorer.Score(scoreCtx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: rerank scoring: %v", models.ErrModelUnavailable, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: scorer returned %d scores for %d candidates", models.ErrModelUnavailable, len(scores), len(candidates))
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// Stable: exact score ties keep candidate order.
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]models.DocumentChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = candidates[order[i]].Chunk
	}
	return out, nil
}

// truncateForScoring caps content at max runes. Cutting on a rune boundary
// keeps multi-byte characters intact for the tokenizer.
func truncateForScoring(content string, max int) string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	return string([]rune(content)[:max])
}

// getScorer constructs the scorer on first use.
func (r *Reranker) getScorer() (Scorer, error) {
	r.once.Do(func() {
		r.scorer, r.initE = NewScorer(r.cfg)
	})
	return r.scorer, r.initE
}

// Close releases the scorer if it was ever constructed.
func (r *Reranker) Close() error {
	if r.scorer != nil {
		return r.scorer.Close()
	}
	return nil
}
