package config

// Retrieval constants carried over from the reference deployment: fetch 15
// candidates, keep 8 after reranking, chunk pages into ~500-char windows with
// 100 chars of overlap.
const (
	DefaultInitialK     = 15
	DefaultFinalK       = 8
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.IndexDir == "" {
		cfg.Storage.IndexDir = "./data/index"
	}
	if cfg.Storage.IndexName == "" {
		cfg.Storage.IndexName = "sg_rental"
	}
	if cfg.Storage.SourcesPath == "" {
		cfg.Storage.SourcesPath = "./data/urls.json"
	}
	// Embedding defaults to the local ONNX backend even though it needs cgo:
	// unlike reranking, there is no model-free fallback that yields usable
	// retrieval quality. Non-cgo builds must set type to "openai" (the mock
	// backend is for tests).
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = "onnx"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Retrieval.InitialK == 0 {
		cfg.Retrieval.InitialK = DefaultInitialK
	}
	if cfg.Retrieval.FinalK == 0 {
		cfg.Retrieval.FinalK = DefaultFinalK
	}
	if cfg.Retrieval.SearchType == "" {
		cfg.Retrieval.SearchType = "similarity"
	}
	if cfg.Retrieval.MMRFetchMultiplier == 0 {
		cfg.Retrieval.MMRFetchMultiplier = 2
	}
	if cfg.Retrieval.MMRLambda == 0 {
		cfg.Retrieval.MMRLambda = 0.5
	}
	if cfg.Rerank.Type == "" {
		cfg.Rerank.Type = "lexical"
	}
	if cfg.Rerank.MaxTokens == 0 {
		cfg.Rerank.MaxTokens = 256
	}
	if cfg.Rerank.MaxContentChars == 0 {
		cfg.Rerank.MaxContentChars = 500
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "deepseek-chat"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2000
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Ingest.MinContentChars == 0 {
		cfg.Ingest.MinContentChars = 100
	}
	if cfg.Ingest.AllowedDomains == nil {
		cfg.Ingest.AllowedDomains = []string{"gov.sg", "hdb.gov.sg", "cea.gov.sg", "ura.gov.sg"}
	}
	if cfg.Ingest.FetchTimeoutSec == 0 {
		cfg.Ingest.FetchTimeoutSec = 30
	}
	if cfg.Ingest.FetchRetries == 0 {
		cfg.Ingest.FetchRetries = 3
	}
}
