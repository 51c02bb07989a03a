// Package pipeline sequences retrieval, reranking, context assembly, and
// generation for one query, and derives citations from exactly the chunks
// used for generation.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/models"
)

// User-visible failure messages. Backend failures are worded distinctly from
// the "not covered" answer so operators and users can tell them apart.
const (
	searchFailedAnswer     = "The assistant could not search the knowledge base due to an internal error. Please try again later."
	generationFailedAnswer = "An error occurred while generating the answer. The sources below were found for your question; please try again later."
)

// IdentityNotSure is the identity sentinel that disables the question prefix.
const IdentityNotSure = "Not Sure"

// Retriever produces the initial candidate set for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.Candidate, error)
}

// Reranker reduces candidates to the top-K most relevant chunks.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.Candidate, topK int) ([]models.DocumentChunk, error)
}

// Generator turns (context, question) into an answer.
type Generator interface {
	Generate(ctx context.Context, contextText, question string) (string, error)
}

// Question is one user query. Identity, when set and not the "Not Sure"
// sentinel, is prefixed to the question as a bracketed annotation for
// retrieval and generation; it is never treated as retrieved content and
// never appears in citations.
type Question struct {
	Text     string
	Identity string
}

// Pipeline runs the query state machine: retrieve, rerank, assemble context,
// generate. It is stateless per query and safe for concurrent use.
type Pipeline struct {
	retriever Retriever
	reranker  Reranker
	generator Generator
	finalK    int
	logger    *zap.Logger
}

// New creates a pipeline with the given stages and final top-K.
func New(retriever Retriever, reranker Reranker, generator Generator, finalK int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		finalK:    finalK,
		logger:    logger,
	}
}

// Query answers one question. The result always carries a natural-language
// answer and a citation list that exactly matches the chunks whose content
// was assembled into the generation context, in the same order.
//
// Failure domains are kept separate: an absent or empty index degrades to the
// fixed "not covered" answer; an embedding/reranking backend failure is an
// explicit error answer with no citations; a generation failure is an
// explicit error answer that keeps the already-computed citations.
func (p *Pipeline) Query(ctx context.Context, q Question) *models.QueryResult {
	question := annotate(q)

	candidates, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, models.ErrIndexAbsent) {
			p.logger.Warn("query against absent knowledge base")
			return notCovered()
		}
		p.logger.Error("retrieval failed", zap.Error(err))
		return failed(searchFailedAnswer)
	}

	reranked, err := p.reranker.Rerank(ctx, question, candidates, p.finalK)
	if err != nil {
		p.logger.Error("reranking failed", zap.Error(err))
		return failed(searchFailedAnswer)
	}
	if len(reranked) == 0 {
		p.logger.Info("no relevant chunks after reranking", zap.Int("candidates", len(candidates)))
		return notCovered()
	}

	contextText := assembleContext(reranked)
	citations := models.CitationsFor(reranked)

	answer, err := p.generator.Generate(ctx, contextText, question)
	if err != nil {
		p.logger.Error("generation failed", zap.Error(err))
		// Retrieval and reranking succeeded: keep the citations.
		return &models.QueryResult{
			Answer:    generationFailedAnswer,
			Citations: citations,
			Outcome:   models.OutcomeFailed,
		}
	}

	p.logger.Debug("query answered",
		zap.Int("candidates", len(candidates)),
		zap.Int("citations", len(citations)),
	)
	return &models.QueryResult{
		Answer:    answer,
		Citations: citations,
		Outcome:   models.OutcomeAnswered,
	}
}

// annotate applies the optional identity prefix.
func annotate(q Question) string {
	if q.Identity == "" || q.Identity == IdentityNotSure {
		return q.Text
	}
	return "(User identity: " + q.Identity + ") " + q.Text
}

// assembleContext joins chunk contents in rank order with paragraph breaks.
func assembleContext(chunks []models.DocumentChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}

func notCovered() *models.QueryResult {
	return &models.QueryResult{
		Answer:    models.NotCoveredAnswer,
		Citations: []models.Citation{},
		Outcome:   models.OutcomeNotCovered,
	}
}

func failed(answer string) *models.QueryResult {
	return &models.QueryResult{
		Answer:    answer,
		Citations: []models.Citation{},
		Outcome:   models.OutcomeFailed,
	}
}
