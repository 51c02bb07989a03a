package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// LexicalScorer scores pairs by token-set overlap (Ochiai coefficient,
// |Q∩T| / sqrt(|Q||T|)). It is deterministic, loads nothing, and serves as
// the default scorer on builds without ONNX support. It is a weaker relevance
// signal than a cross-encoder but preserves the contract: a scalar per pair,
// higher is more relevant.
type LexicalScorer struct{}

// NewLexicalScorer returns the dependency-free overlap scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Score computes the overlap score for every text against the query.
func (s *LexicalScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	qset := tokenSet(query)
	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = ochiai(qset, text)
	}
	return scores, nil
}

// Close is a no-op for LexicalScorer.
func (s *LexicalScorer) Close() error { return nil }

func tokenSet(text string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func ochiai(qset map[string]struct{}, text string) float64 {
	tset := tokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for tok := range tset {
		if _, ok := qset[tok]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(qset))) * math.Sqrt(float64(len(tset))))
}
