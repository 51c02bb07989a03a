package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/models"
	"github.com/lioncity/rentqa/internal/vector"
)

// Report summarizes one ingestion run.
type Report struct {
	Fetched     int `json:"fetched"`
	Skipped     int `json:"skipped"`
	NewChunks   int `json:"new_chunks"`
	TotalChunks int `json:"total_chunks"`
}

// Ingester fetches allow-listed pages, chunks them, embeds the chunks, and
// writes the persisted index. When a valid index already exists on disk with
// matching dimensions, new chunks are appended; otherwise a fresh index is
// built.
type Ingester struct {
	cfg       *config.IngestConfig
	store     *vector.Store
	embedder  embedding.Embedder
	allowlist *Allowlist
	fetcher   *Fetcher
	chunker   *Chunker
	logger    *zap.Logger
}

// NewIngester wires an ingester from config.
func NewIngester(cfg *config.IngestConfig, store *vector.Store, embedder embedding.Embedder, logger *zap.Logger) *Ingester {
	return &Ingester{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		allowlist: NewAllowlist(cfg.AllowedDomains),
		fetcher:   NewFetcher(time.Duration(cfg.FetchTimeoutSec)*time.Second, cfg.FetchRetries, logger),
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:    logger,
	}
}

// Run ingests the given sources and saves the resulting index. Individual
// page failures are logged and skipped; the run fails only when nothing could
// be ingested or the index cannot be embedded or saved. Returns the saved
// index alongside the report so the caller can serve it immediately.
func (ing *Ingester) Run(ctx context.Context, sources []models.SourceRecord) (*vector.Index, *Report, error) {
	report := &Report{}
	var chunks []models.DocumentChunk

	for _, src := range sources {
		pageChunks, err := ing.ingestPage(ctx, src)
		if err != nil {
			ing.logger.Warn("skipping source", zap.String("url", src.URL), zap.Error(err))
			report.Skipped++
			continue
		}
		report.Fetched++
		chunks = append(chunks, pageChunks...)
	}
	report.NewChunks = len(chunks)
	if len(chunks) == 0 {
		return nil, report, fmt.Errorf("no ingestable content in %d sources", len(sources))
	}

	idx, err := ing.buildIndex(ctx, chunks)
	if err != nil {
		return nil, report, err
	}
	if err := ing.store.Save(idx); err != nil {
		return nil, report, fmt.Errorf("save index: %w", err)
	}
	report.TotalChunks = idx.Size()
	ing.logger.Info("ingestion complete",
		zap.Int("fetched", report.Fetched),
		zap.Int("skipped", report.Skipped),
		zap.Int("new_chunks", report.NewChunks),
		zap.Int("total_chunks", report.TotalChunks),
	)
	return idx, report, nil
}

// ingestPage fetches and chunks one source page.
func (ing *Ingester) ingestPage(ctx context.Context, src models.SourceRecord) ([]models.DocumentChunk, error) {
	if err := ing.allowlist.CheckURL(src.URL); err != nil {
		return nil, err
	}
	page, err := ing.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	text := ExtractText(page)
	if len([]rune(text)) < ing.cfg.MinContentChars {
		return nil, fmt.Errorf("cleaned text too short (%d chars)", len([]rune(text)))
	}
	chunks := ing.chunker.Chunk(src, text)
	ing.logger.Debug("page ingested",
		zap.String("url", src.URL),
		zap.Int("text_chars", len(text)),
		zap.Int("chunks", len(chunks)),
	)
	return chunks, nil
}

// buildIndex appends to the existing persisted index when it is compatible,
// or builds a fresh one.
func (ing *Ingester) buildIndex(ctx context.Context, chunks []models.DocumentChunk) (*vector.Index, error) {
	if existing, ok := ing.store.Load(); ok {
		if existing.Dimensions() == ing.embedder.Dimensions() {
			if err := vector.AddChunks(ctx, existing, chunks, ing.embedder); err != nil {
				return nil, fmt.Errorf("append chunks: %w", err)
			}
			return existing, nil
		}
		ing.logger.Warn("existing index dimension differs from embedder, rebuilding",
			zap.Int("index", existing.Dimensions()),
			zap.Int("embedder", ing.embedder.Dimensions()),
		)
	}
	idx, err := vector.CreateFromChunks(ctx, chunks, ing.embedder)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return idx, nil
}
