// Package models defines core data structures for chunks, citations, and query results.
package models

// Metadata fallbacks applied when a source record carries no title or link.
const (
	UnknownTitle = "Unknown Title"
	NoURL        = ""
)

// DocumentChunk is the atomic unit of retrieval: a bounded slice of one source
// page's text together with that page's metadata. Chunks are immutable once
// persisted; multiple chunks routinely share the same URL and title.
type DocumentChunk struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Candidate is a chunk paired with its first-stage retrieval score.
// The score is an inner product over unit vectors (cosine similarity),
// higher is more similar.
type Candidate struct {
	Chunk DocumentChunk
	Score float64
}

// SourceRecord describes one page of the ingestion allow-list.
type SourceRecord struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}
