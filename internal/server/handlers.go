package server

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/ingest"
	"github.com/lioncity/rentqa/internal/pipeline"
)

type queryRequest struct {
	Question string `json:"question"`
	Identity string `json:"identity,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.logger.Debug("query request", zap.String("question", req.Question), zap.String("identity", req.Identity))
	result := s.queries.Query(r.Context(), pipeline.Question{Text: req.Question, Identity: req.Identity})
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		s.respondError(w, http.StatusNotImplemented, "ingestion not enabled")
		return
	}
	sources, err := ingest.LoadSources(s.config.Storage.SourcesPath)
	if err != nil {
		s.logger.Error("loading sources failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("ingest request", zap.Int("sources", len(sources)))
	idx, report, err := s.ingester.Run(r.Context(), sources)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.handle.Replace(idx)
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"index_present": false,
		"chunks":        0,
	}
	if idx, ok := s.handle.Get(); ok {
		resp["index_present"] = true
		resp["chunks"] = idx.Size()
		resp["dimensions"] = idx.Dimensions()
	}
	if disk := artifactBytes(s.store.VectorPath(), s.store.SidecarPath()); disk > 0 {
		resp["disk_usage_bytes"] = disk
	}
	resp["config"] = map[string]interface{}{
		"index_dir":     s.config.Storage.IndexDir,
		"index_name":    s.config.Storage.IndexName,
		"initial_k":     s.config.Retrieval.InitialK,
		"final_k":       s.config.Retrieval.FinalK,
		"search_type":   s.config.Retrieval.SearchType,
		"chunk_size":    s.config.Ingest.ChunkSize,
		"chunk_overlap": s.config.Ingest.ChunkOverlap,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// artifactBytes sums the sizes of the on-disk artifacts that exist.
func artifactBytes(paths ...string) int64 {
	var total int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
