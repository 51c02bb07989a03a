package models

import "github.com/lioncity/rentqa/pkg/utils"

// SnippetMaxLen bounds citation snippets in runes; longer content is truncated with "...".
const SnippetMaxLen = 200

// NotCoveredAnswer is returned whenever the knowledge base holds nothing
// relevant to the question (absent index or empty reranked set).
const NotCoveredAnswer = "The knowledge base does not cover this question. Please consult official agencies (HDB, CEA, or URA)."

// Outcome classifies how a query ended. Callers branch on this instead of
// sniffing the answer text.
type Outcome string

const (
	// OutcomeAnswered means the generator produced an answer grounded in citations.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNotCovered means the knowledge base held nothing relevant.
	OutcomeNotCovered Outcome = "not_covered"
	// OutcomeFailed means a backend failed; Answer carries the operator-facing message.
	OutcomeFailed Outcome = "failed"
)

// Citation is the display projection of a chunk used for generation.
type Citation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// QueryResult is the terminal state of one query through the pipeline.
type QueryResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Outcome   Outcome    `json:"outcome"`
}

// NewCitation projects a chunk for display, applying metadata fallbacks and
// the snippet bound. Content at or under the bound is kept verbatim.
func NewCitation(chunk DocumentChunk) Citation {
	title := chunk.Title
	if title == "" {
		title = UnknownTitle
	}
	return Citation{
		Title:   title,
		URL:     chunk.URL,
		Snippet: utils.Truncate(chunk.Content, SnippetMaxLen),
	}
}

// CitationsFor projects every chunk in order. The result always has the same
// length and order as chunks, so citations can never diverge from the
// generation context built from the same slice.
func CitationsFor(chunks []DocumentChunk) []Citation {
	citations := make([]Citation, len(chunks))
	for i, chunk := range chunks {
		citations[i] = NewCitation(chunk)
	}
	return citations
}
