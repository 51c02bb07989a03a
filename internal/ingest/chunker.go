package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lioncity/rentqa/internal/models"
)

// Chunker splits cleaned page text into overlapping chunks, preferring to
// break at paragraph, then line, then word boundaries before cutting
// mid-word. Sizes are measured in runes.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewChunker creates a chunker with the given size and overlap (in runes).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Chunk splits text and wraps each piece as a DocumentChunk carrying the
// source page's title, URL, and category.
func (c *Chunker) Chunk(source models.SourceRecord, text string) []models.DocumentChunk {
	pieces := c.Split(text)
	chunks := make([]models.DocumentChunk, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, models.DocumentChunk{
			ID:       uuid.New().String(),
			Title:    source.Title,
			URL:      source.URL,
			Category: source.Category,
			Content:  p,
		})
	}
	return chunks
}

// Split returns overlapping text windows of at most chunkSize runes.
func (c *Chunker) Split(text string) []string {
	return c.split(text, c.separators)
}

// split recursively breaks text on the first separator that appears in it,
// recursing with finer separators on any fragment still over the size limit,
// then merges fragments back into overlapping windows.
func (c *Chunker) split(text string, separators []string) []string {
	if runeLen(text) <= c.chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	sep := separators[len(separators)-1]
	rest := separators
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}

	var fragments []string
	if sep == "" {
		fragments = splitRunes(text, c.chunkSize)
	} else {
		fragments = strings.Split(text, sep)
	}

	var fit []string
	for _, frag := range fragments {
		if runeLen(frag) <= c.chunkSize {
			if strings.TrimSpace(frag) != "" {
				fit = append(fit, frag)
			}
			continue
		}
		fit = append(fit, c.split(frag, rest)...)
	}
	return c.merge(fit, sep)
}

// merge joins adjacent fragments into windows of at most chunkSize runes,
// carrying the last chunkOverlap runes worth of fragments into the next
// window.
func (c *Chunker) merge(fragments []string, sep string) []string {
	sepLen := runeLen(sep)
	var out []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(window, sep))
		if joined != "" {
			out = append(out, joined)
		}
	}

	for _, frag := range fragments {
		fragLen := runeLen(frag)
		if len(window) > 0 && total+sepLen+fragLen > c.chunkSize {
			flush()
			// Drop leading fragments until what remains fits in the overlap.
			for len(window) > 0 && total > c.chunkOverlap {
				total -= runeLen(window[0]) + sepLen
				window = window[1:]
			}
			if len(window) == 0 {
				total = 0
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, frag)
		total += fragLen
	}
	flush()
	return out
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
