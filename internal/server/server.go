// Package server provides the HTTP API: query, ingest, status, health.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/ingest"
	"github.com/lioncity/rentqa/internal/models"
	"github.com/lioncity/rentqa/internal/pipeline"
	"github.com/lioncity/rentqa/internal/vector"
)

// QueryService answers one question; implemented by pipeline.Pipeline.
type QueryService interface {
	Query(ctx context.Context, q pipeline.Question) *models.QueryResult
}

// IngestService rebuilds the index from source records; implemented by
// ingest.Ingester. May be nil when the server runs query-only.
type IngestService interface {
	Run(ctx context.Context, sources []models.SourceRecord) (*vector.Index, *ingest.Report, error)
}

// Server is the HTTP server for the assistant API.
type Server struct {
	queries  QueryService
	ingester IngestService
	handle   *vector.Handle
	store    *vector.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. ingester may be nil;
// the ingest endpoint then responds 501.
func NewServer(
	queries QueryService,
	ingester IngestService,
	handle *vector.Handle,
	store *vector.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		queries:  queries,
		ingester: ingester,
		handle:   handle,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
