//go:build cgo
// +build cgo

package rerank

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/lioncity/rentqa/internal/embedding"
)

// ONNXScorer runs a cross-encoder exported to ONNX (e.g. a ms-marco MiniLM
// ranker). The model jointly encodes "[CLS] query [SEP] passage [SEP]" and
// emits one relevance logit. Requires CGO and the onnxruntime shared library;
// inference is serialized because the session reuses pre-allocated tensors.
type ONNXScorer struct {
	session   *ort.AdvancedSession
	maxTokens int
	tokenizer embedding.Tokenizer

	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXScorer creates the cross-encoder session.
func NewONNXScorer(modelPath string, maxTokens int) (*ONNXScorer, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}

	tokenizer := &embedding.SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.TokenizePair("", "", maxTokens)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(1, 1), make([]float32, 1))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXScorer{
		session:             session,
		maxTokens:           maxTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Score runs the cross-encoder over every (query, text) pair.
func (s *ONNXScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores := make([]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputIDs, attentionMask, tokenTypeIDs := s.tokenizer.TokenizePair(query, text, s.maxTokens)
		copy(s.inputIDsTensor.GetData(), inputIDs)
		copy(s.attentionMaskTensor.GetData(), attentionMask)
		copy(s.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

		if err := s.session.Run(); err != nil {
			return nil, fmt.Errorf("cross-encoder inference failed: %w", err)
		}
		scores[i] = float64(s.outputTensor.GetData()[0])
	}
	return scores, nil
}

// Close destroys the session and tensors.
func (s *ONNXScorer) Close() error {
	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if s.inputIDsTensor != nil {
		_ = s.inputIDsTensor.Destroy()
		s.inputIDsTensor = nil
	}
	if s.attentionMaskTensor != nil {
		_ = s.attentionMaskTensor.Destroy()
		s.attentionMaskTensor = nil
	}
	if s.tokenTypeIDsTensor != nil {
		_ = s.tokenTypeIDsTensor.Destroy()
		s.tokenTypeIDsTensor = nil
	}
	if s.outputTensor != nil {
		_ = s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	return err
}
