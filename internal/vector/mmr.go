package vector

import (
	"context"
	"fmt"

	"github.com/lioncity/rentqa/internal/models"
)

// SearchMMR returns k chunks selected with maximum marginal relevance: a pool
// of fetchK nearest neighbors is fetched first, then results are picked one at
// a time maximizing lambda*sim(query, c) - (1-lambda)*max sim(c, selected).
// Selection is deterministic: ties resolve to the earlier pool position.
// The reported score is the candidate's query similarity, so scores are
// comparable with plain Search results.
func (idx *Index) SearchMMR(ctx context.Context, query []float32, k, fetchK int, lambda float64) ([]models.Candidate, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), idx.dimensions)
	}
	if fetchK < k {
		fetchK = k
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ordinals, scores := idx.rankLocked(query, fetchK)
	if len(ordinals) == 0 {
		return nil, nil
	}
	if k > len(ordinals) {
		k = len(ordinals)
	}

	selected := make([]int, 0, k)    // positions into the pool
	remaining := make([]bool, len(ordinals))
	for i := range remaining {
		remaining[i] = true
	}
	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i := range ordinals {
			if !remaining[i] {
				continue
			}
			redundancy := 0.0
			for _, s := range selected {
				sim := InnerProduct(idx.vectors[ordinals[i]], idx.vectors[ordinals[s]])
				if sim > redundancy {
					redundancy = sim
				}
			}
			mmr := lambda*scores[i] - (1-lambda)*redundancy
			if best == -1 || mmr > bestScore {
				best = i
				bestScore = mmr
			}
		}
		if best == -1 {
			break
		}
		remaining[best] = false
		selected = append(selected, best)
	}

	results := make([]models.Candidate, len(selected))
	for i, pos := range selected {
		results[i] = models.Candidate{Chunk: idx.chunks[ordinals[pos]], Score: scores[pos]}
	}
	return results, nil
}
