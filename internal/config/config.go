// Package config provides configuration loading and structs for the rentqa service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Rerank    RerankConfig    `yaml:"rerank"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the persisted index location and the source allow-list.
type StorageConfig struct {
	IndexDir    string `yaml:"index_dir"`
	IndexName   string `yaml:"index_name"`
	SourcesPath string `yaml:"sources_path"`
}

// EmbeddingConfig selects and configures the embedding backend.
// Type is one of "onnx", "openai", "mock".
type EmbeddingConfig struct {
	Type        string `yaml:"type"`
	ModelPath   string `yaml:"model_path"` // onnx
	Model       string `yaml:"model"`      // openai-compatible model name
	BaseURL     string `yaml:"base_url"`   // openai-compatible endpoint
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig holds first-stage retrieval settings.
// SearchType is "similarity" (default) or "mmr".
type RetrievalConfig struct {
	InitialK           int     `yaml:"initial_k"`
	FinalK             int     `yaml:"final_k"`
	SearchType         string  `yaml:"search_type"`
	MMRFetchMultiplier int     `yaml:"mmr_fetch_multiplier"`
	MMRLambda          float64 `yaml:"mmr_lambda"`
}

// RerankConfig selects and configures the cross-encoder scorer.
// Type is one of "onnx", "lexical".
type RerankConfig struct {
	Type            string `yaml:"type"`
	ModelPath       string `yaml:"model_path"`
	MaxTokens       int    `yaml:"max_tokens"`
	MaxContentChars int    `yaml:"max_content_chars"`
}

// LLMConfig holds generation backend settings. The API key is taken from the
// OPENAI_API_KEY environment variable, never from the config file.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// IngestConfig holds page fetching and chunking settings.
type IngestConfig struct {
	ChunkSize       int      `yaml:"chunk_size"`
	ChunkOverlap    int      `yaml:"chunk_overlap"`
	MinContentChars int      `yaml:"min_content_chars"`
	AllowedDomains  []string `yaml:"allowed_domains"`
	FetchTimeoutSec int      `yaml:"fetch_timeout_secs"`
	FetchRetries    int      `yaml:"fetch_retries"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.IndexDir = expandPath(cfg.Storage.IndexDir, configDir)
	cfg.Storage.SourcesPath = expandPath(cfg.Storage.SourcesPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Rerank.ModelPath != "" {
		cfg.Rerank.ModelPath = expandPath(cfg.Rerank.ModelPath, configDir)
	}

	return &cfg, nil
}

// Default returns a config with every default applied, for running without a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
