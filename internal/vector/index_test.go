package vector

import (
	"context"
	"testing"

	"github.com/lioncity/rentqa/internal/models"
)

func chunk(id, content string) models.DocumentChunk {
	return models.DocumentChunk{ID: id, Title: "t-" + id, URL: "https://www.hdb.gov.sg/" + id, Content: content}
}

func TestIndex_AddSearch(t *testing.T) {
	idx, err := NewIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	chunks := []models.DocumentChunk{chunk("a", "one"), chunk("b", "two"), chunk("c", "three")}
	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(chunks, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("top result should be a, got %s", results[0].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be ordered by descending score")
	}
}

func TestIndex_SearchKLargerThanSize(t *testing.T) {
	idx, _ := NewIndex(2)
	_ = idx.Add([]models.DocumentChunk{chunk("x", "x")}, [][]float32{{1, 0}})
	results, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestIndex_dimensionMismatch(t *testing.T) {
	idx, _ := NewIndex(3)
	if err := idx.Add([]models.DocumentChunk{chunk("a", "a")}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected dimension mismatch on Add")
	}
	if _, err := idx.Search(context.Background(), []float32{1}, 1); err == nil {
		t.Error("expected dimension mismatch on Search")
	}
}

func TestIndex_SearchMMR_diversity(t *testing.T) {
	idx, _ := NewIndex(3)
	// a and b are near-duplicates; c is distinct but still relevant.
	chunks := []models.DocumentChunk{chunk("a", "one"), chunk("b", "two"), chunk("c", "three")}
	vecs := [][]float32{
		{0.8, 0.6, 0},
		{0.79, 0.61, 0},
		{0.7, 0, 0.7},
	}
	_ = idx.Add(chunks, vecs)

	results, err := idx.SearchMMR(context.Background(), []float32{1, 0, 0}, 2, 3, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("first pick should be the most similar, got %s", results[0].Chunk.ID)
	}
	if results[1].Chunk.ID != "c" {
		t.Errorf("second pick should favor diversity, got %s", results[1].Chunk.ID)
	}
}

func TestIndex_SearchMMR_deterministic(t *testing.T) {
	idx, _ := NewIndex(2)
	_ = idx.Add(
		[]models.DocumentChunk{chunk("a", "a"), chunk("b", "b"), chunk("c", "c"), chunk("d", "d")},
		[][]float32{{1, 0}, {0.8, 0.6}, {0.6, 0.8}, {0, 1}},
	)
	first, err := idx.SearchMMR(context.Background(), []float32{1, 0}, 3, 4, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := idx.SearchMMR(context.Background(), []float32{1, 0}, 3, 4, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		for j := range first {
			if again[j].Chunk.ID != first[j].Chunk.ID {
				t.Fatalf("MMR selection not deterministic at run %d pos %d", i, j)
			}
		}
	}
}

func TestInnerProduct(t *testing.T) {
	if got := InnerProduct([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("identical unit vectors: %f", got)
	}
	if got := InnerProduct([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: %f", got)
	}
	if got := InnerProduct([]float32{1}, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched lengths should score 0: %f", got)
	}
}
