package models

import "errors"

// Error kinds the pipeline distinguishes. Absence of coverage degrades to the
// "not covered" answer; backend failures surface as explicit failures so an
// operator can tell them apart.
var (
	// ErrIndexAbsent means no valid persisted index exists (missing, corrupt, or empty).
	ErrIndexAbsent = errors.New("vector index absent")
	// ErrModelUnavailable means an embedding or reranking backend failed to initialize or score.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrGeneration means the text-generation backend errored or timed out.
	ErrGeneration = errors.New("generation failed")
)
