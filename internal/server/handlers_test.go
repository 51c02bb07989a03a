package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/embedding"
	"github.com/lioncity/rentqa/internal/ingest"
	"github.com/lioncity/rentqa/internal/models"
	"github.com/lioncity/rentqa/internal/pipeline"
	"github.com/lioncity/rentqa/internal/vector"
)

type mockQueryService struct {
	result *models.QueryResult
	lastQ  pipeline.Question
}

func (m *mockQueryService) Query(ctx context.Context, q pipeline.Question) *models.QueryResult {
	m.lastQ = q
	return m.result
}

type mockIngestService struct {
	idx    *vector.Index
	report *ingest.Report
	err    error
}

func (m *mockIngestService) Run(ctx context.Context, sources []models.SourceRecord) (*vector.Index, *ingest.Report, error) {
	return m.idx, m.report, m.err
}

func testConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Storage.IndexDir = dir
	cfg.Storage.IndexName = "sg_rental"
	cfg.Storage.SourcesPath = filepath.Join(dir, "sources.json")
	config.ApplyDefaults(cfg)
	return cfg
}

func testServer(t *testing.T, queries QueryService, ingester IngestService, handle *vector.Handle) *Server {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	store := vector.NewStore(dir, "sg_rental", logger)
	cfg := testConfig(dir)
	if err := os.WriteFile(cfg.Storage.SourcesPath,
		[]byte(`[{"url":"https://www.hdb.gov.sg/renting","title":"Renting","category":"HDB"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	return NewServer(queries, ingester, handle, store, cfg, logger)
}

func TestHandleQuery(t *testing.T) {
	mock := &mockQueryService{result: &models.QueryResult{
		Answer:  "Usually six months.",
		Outcome: models.OutcomeAnswered,
		Citations: []models.Citation{
			{Title: "Renting", URL: "https://hdb.gov.sg/renting", Snippet: "six months"},
		},
	}}
	srv := testServer(t, mock, nil, vector.NewHandle(nil))

	body, _ := json.Marshal(map[string]string{"question": "minimum lease term?", "identity": "Student"})
	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleQuery(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.QueryResult
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Outcome != models.OutcomeAnswered || len(out.Citations) != 1 {
		t.Errorf("unexpected result: %+v", out)
	}
	if mock.lastQ.Identity != "Student" {
		t.Errorf("identity not forwarded: %+v", mock.lastQ)
	}
}

func TestHandleQuery_missingQuestion(t *testing.T) {
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(nil))
	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	srv.handleQuery(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleQuery_invalidBody(t *testing.T) {
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(nil))
	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(`{not json`)))
	w := httptest.NewRecorder()
	srv.handleQuery(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleIngest(t *testing.T) {
	emb := embedding.NewMockEmbedder(8)
	idx, err := vector.CreateFromChunks(context.Background(), []models.DocumentChunk{
		{ID: "c1", Title: "T", URL: "https://hdb.gov.sg", Content: "content"},
	}, emb)
	if err != nil {
		t.Fatal(err)
	}
	handle := vector.NewHandle(nil)
	mock := &mockIngestService{idx: idx, report: &ingest.Report{Fetched: 1, NewChunks: 1, TotalChunks: 1}}
	srv := testServer(t, &mockQueryService{}, mock, handle)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	w := httptest.NewRecorder()
	srv.handleIngest(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	if got, ok := handle.Get(); !ok || got.Size() != 1 {
		t.Error("ingest did not swap the served index")
	}
}

func TestHandleIngest_notEnabled(t *testing.T) {
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(nil))
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	w := httptest.NewRecorder()
	srv.handleIngest(w, r)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	emb := embedding.NewMockEmbedder(8)
	idx, err := vector.CreateFromChunks(context.Background(), []models.DocumentChunk{
		{ID: "c1", Title: "T", URL: "https://hdb.gov.sg", Content: "content"},
		{ID: "c2", Title: "T", URL: "https://hdb.gov.sg", Content: "more content"},
	}, emb)
	if err != nil {
		t.Fatal(err)
	}
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(idx))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		IndexPresent bool `json:"index_present"`
		Chunks       int  `json:"chunks"`
		Dimensions   int  `json:"dimensions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.IndexPresent || out.Chunks != 2 || out.Dimensions != 8 {
		t.Errorf("unexpected status: %+v", out)
	}
}

func TestHandleStatus_absentIndex(t *testing.T) {
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(nil))
	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	var out struct {
		IndexPresent bool `json:"index_present"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.IndexPresent {
		t.Error("absent index reported as present")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &mockQueryService{}, nil, vector.NewHandle(nil))
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}
