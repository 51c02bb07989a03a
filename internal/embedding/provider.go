package embedding

import (
	"fmt"
	"sync"
	"time"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/models"
)

// Provider hands out embedders, keeping one cached instance per model
// identifier for the life of the process. Model load can take seconds, so
// re-requesting the same model returns the cached instance. Safe for
// concurrent use.
type Provider struct {
	mu        sync.Mutex
	instances map[string]Embedder
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{instances: make(map[string]Embedder)}
}

// Get returns the embedder for cfg, constructing it on first use. Construction
// failures are reported as models.ErrModelUnavailable and never cached.
func (p *Provider) Get(cfg *config.EmbeddingConfig) (Embedder, error) {
	key := cfg.Type + "/" + cfg.ModelPath + "/" + cfg.Model
	p.mu.Lock()
	defer p.mu.Unlock()
	if emb, ok := p.instances[key]; ok {
		return emb, nil
	}
	emb, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding backend %q: %v", models.ErrModelUnavailable, cfg.Type, err)
	}
	p.instances[key] = emb
	return emb, nil
}

// Close closes every cached embedder.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for key, emb := range p.instances {
		if err := emb.Close(); err != nil && first == nil {
			first = err
		}
		delete(p.instances, key)
	}
	return first
}

func build(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Type {
	case "onnx":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "openai":
		return NewOpenAIEmbedder(cfg.Model, cfg.BaseURL, cfg.Dimensions, cfg.CacheSize, time.Duration(cfg.TimeoutSecs)*time.Second)
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding type: %s (supported: onnx, openai, mock)", cfg.Type)
	}
}
