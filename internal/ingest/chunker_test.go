package ingest

import (
	"strings"
	"testing"

	"github.com/lioncity/rentqa/internal/models"
)

func TestChunker_shortTextSingleChunk(t *testing.T) {
	c := NewChunker(500, 100)
	out := c.Split("a short paragraph about rental deposits")
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
}

func TestChunker_respectsSizeBound(t *testing.T) {
	c := NewChunker(100, 20)
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("tenancy agreements usually cover deposits and notice periods. ")
	}
	out := c.Split(b.String())
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(out))
	}
	for i, chunk := range out {
		if n := len([]rune(chunk)); n > 100 {
			t.Errorf("chunk %d exceeds size bound: %d runes", i, n)
		}
	}
}

func TestChunker_prefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("first paragraph sentence. ", 3)
	para2 := strings.Repeat("second paragraph sentence. ", 3)
	c := NewChunker(90, 0)
	out := c.Split(strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2))
	if len(out) != 2 {
		t.Fatalf("expected a chunk per paragraph, got %d: %q", len(out), out)
	}
	if !strings.HasPrefix(out[0], "first paragraph") || !strings.HasPrefix(out[1], "second paragraph") {
		t.Errorf("paragraphs not kept intact: %q", out)
	}
}

func TestChunker_overlapCarriesText(t *testing.T) {
	words := make([]string, 60)
	for i := range words {
		words[i] = "w" + string(rune('a'+i%26))
	}
	c := NewChunker(50, 20)
	out := c.Split(strings.Join(words, " "))
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(out))
	}
	// Consecutive chunks share the carried-over tail.
	tail := out[0][len(out[0])-5:]
	if !strings.Contains(out[1], tail) {
		t.Errorf("chunk 1 does not overlap chunk 0: %q / %q", out[0], out[1])
	}
}

func TestChunker_unbreakableTextIsCutByRunes(t *testing.T) {
	c := NewChunker(10, 0)
	out := c.Split(strings.Repeat("x", 25))
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	for i, chunk := range out {
		if len(chunk) > 10 {
			t.Errorf("chunk %d too long: %d", i, len(chunk))
		}
	}
}

func TestChunker_chunkCarriesSourceMetadata(t *testing.T) {
	c := NewChunker(500, 100)
	src := models.SourceRecord{
		URL:      "https://www.hdb.gov.sg/renting",
		Title:    "Renting a Flat",
		Category: "HDB",
	}
	chunks := c.Chunk(src, "some rental guidance text")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	ch := chunks[0]
	if ch.URL != src.URL || ch.Title != src.Title || ch.Category != src.Category {
		t.Errorf("source metadata not carried: %+v", ch)
	}
	if ch.ID == "" {
		t.Error("chunk has no id")
	}
}
