// Package rerank rescores retrieval candidates with a pairwise relevance model.
package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/lioncity/rentqa/internal/config"
)

// Scorer assigns a relevance score to each (query, text) pair; higher is more
// relevant. Scores from one scorer are only comparable with each other.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
	Close() error
}

// NewScorer builds the configured scorer. Called lazily by the Reranker so the
// model is only loaded on first use.
func NewScorer(cfg *config.RerankConfig) (Scorer, error) {
	switch cfg.Type {
	case "onnx":
		return NewONNXScorer(cfg.ModelPath, cfg.MaxTokens)
	case "lexical":
		return NewLexicalScorer(), nil
	default:
		return nil, fmt.Errorf("unknown reranker type: %s (supported: onnx, lexical)", cfg.Type)
	}
}

// scoreTimeout bounds a single scoring pass; cross-encoder inference over a
// candidate set should never take longer than this.
const scoreTimeout = 60 * time.Second
