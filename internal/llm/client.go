// Package llm wraps the OpenAI-compatible chat completion API used for answer generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lioncity/rentqa/internal/config"
	"github.com/lioncity/rentqa/internal/models"
)

// Client generates answers through an OpenAI-compatible chat endpoint
// (DeepSeek by default). Safe for concurrent use.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewClient creates a generation client. The API key comes from the
// OPENAI_API_KEY environment variable; base URL and model from cfg.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// Generate submits the grounded prompt and returns the answer text.
// Errors and timeouts are reported as models.ErrGeneration.
func (c *Client) Generate(ctx context.Context, contextText, question string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(contextText, question)},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", models.ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}
