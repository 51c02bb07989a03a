package vector

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), "test_rental", zap.NewNop())
}

func TestStore_LoadAbsent(t *testing.T) {
	s := testStore(t)
	if _, ok := s.Load(); ok {
		t.Error("load against empty directory should report absent")
	}
}

func TestStore_RoundTripSelfRetrieval(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(32)
	chunks := []models.DocumentChunk{
		{ID: "c1", Title: "Lease terms", URL: "https://www.hdb.gov.sg/lease", Category: "hdb", Content: "minimum lease term is six months"},
		{ID: "c2", Title: "Deposits", URL: "https://www.cea.gov.sg/deposit", Category: "private", Content: "security deposits are usually one month of rent"},
		{ID: "c3", Title: "Parking", URL: "https://www.ura.gov.sg/parking", Category: "other", Content: "season parking fees vary by location"},
	}
	idx, err := CreateFromChunks(ctx, chunks, emb)
	if err != nil {
		t.Fatal(err)
	}

	s := testStore(t)
	if err := s.Save(idx); err != nil {
		t.Fatal(err)
	}
	loaded, ok := s.Load()
	if !ok {
		t.Fatal("load after save should succeed")
	}
	if loaded.Size() != len(chunks) {
		t.Fatalf("loaded size %d, want %d", loaded.Size(), len(chunks))
	}

	// Searching for any chunk's own content must return that chunk first.
	for _, c := range chunks {
		qv, err := emb.Embed(ctx, c.Content)
		if err != nil {
			t.Fatal(err)
		}
		results, err := loaded.Search(ctx, qv, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 || results[0].Chunk.ID != c.ID {
			t.Errorf("self-retrieval for %s returned %+v", c.ID, results)
		}
		if results[0].Chunk.Title != c.Title || results[0].Chunk.URL != c.URL {
			t.Errorf("metadata lost in round trip for %s", c.ID)
		}
	}
}

func TestStore_LoadRejectsHalfPair(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(8)
	idx, err := CreateFromChunks(ctx, []models.DocumentChunk{{ID: "a", Content: "text"}}, emb)
	if err != nil {
		t.Fatal(err)
	}
	s := testStore(t)
	if err := s.Save(idx); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(s.SidecarPath()); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("load should fail when the sidecar is missing")
	}
}

func TestStore_LoadRejectsCorruptVectors(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(8)
	idx, _ := CreateFromChunks(ctx, []models.DocumentChunk{{ID: "a", Content: "text"}}, emb)
	s := testStore(t)
	if err := s.Save(idx); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.VectorPath(), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("load should fail on a corrupt vector artifact")
	}
}

func TestStore_LoadRejectsCountMismatch(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(8)
	idx, _ := CreateFromChunks(ctx, []models.DocumentChunk{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
	}, emb)
	s := testStore(t)
	if err := s.Save(idx); err != nil {
		t.Fatal(err)
	}

	// Rewrite the vector artifact with only one vector, keeping the saved
	// generation so the count check is what trips.
	_, gen, _, err := readVectors(s.VectorPath())
	if err != nil {
		t.Fatal(err)
	}
	smaller, _ := NewIndex(8)
	_ = smaller.Add([]models.DocumentChunk{{ID: "a", Content: "first"}}, [][]float32{make([]float32, 8)})
	_, vectors := smaller.snapshot()
	if err := writeVectors(s.VectorPath(), 8, gen, vectors); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("load should fail when artifacts disagree on chunk count")
	}
}

func TestStore_LoadRejectsMixedGenerations(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(8)
	s := testStore(t)

	first, _ := CreateFromChunks(ctx, []models.DocumentChunk{{ID: "a", Content: "old lease rules"}}, emb)
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	oldVectors, err := os.ReadFile(s.VectorPath())
	if err != nil {
		t.Fatal(err)
	}

	second, _ := CreateFromChunks(ctx, []models.DocumentChunk{{ID: "b", Content: "new lease rules"}}, emb)
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	// A crash between the two renames leaves the new sidecar next to the old
	// vector file. Counts match, so only the generation stamps disagree.
	if err := os.WriteFile(s.VectorPath(), oldVectors, 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("load should fail when the artifacts come from different saves")
	}
}

func TestStore_EmptyIndexIsAbsent(t *testing.T) {
	idx, _ := NewIndex(8)
	s := testStore(t)
	if err := s.Save(idx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Load(); ok {
		t.Error("an index with zero vectors is not a valid knowledge base")
	}
}

func TestAddChunks_appendsToExisting(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(8)
	idx, _ := CreateFromChunks(ctx, []models.DocumentChunk{{ID: "a", Content: "first"}}, emb)
	if err := AddChunks(ctx, idx, []models.DocumentChunk{{ID: "b", Content: "second"}}, emb); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 2 {
		t.Errorf("size after append: %d", idx.Size())
	}
}
