package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lioncity/rentqa/pkg/utils"
)

// OpenAIEmbedder produces embeddings through an OpenAI-compatible API.
// Vectors are L2-normalized so inner-product search equals cosine similarity.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
	cache      *EmbeddingCache
}

// NewOpenAIEmbedder creates a remote embedder. The API key is read from the
// OPENAI_API_KEY environment variable; baseURL may point at any compatible
// endpoint. Returns an error if the key is unset.
func NewOpenAIEmbedder(model, baseURL string, dimensions, cacheSize int, timeout time.Duration) (*OpenAIEmbedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	clientCfg := openai.DefaultConfig(key)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if dimensions <= 0 {
		dimensions = 1536 // text-embedding-3-small
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: dimensions,
		timeout:    timeout,
		cache:      NewEmbeddingCache(cacheSize),
	}, nil
}

// Embed returns the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	embeddings, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, embeddings[0])
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in a single API request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.request(ctx, texts)
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		out[d.Index] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for the remote embedder.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
