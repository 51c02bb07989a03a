//go:build !cgo
// +build !cgo

package rerank

import (
	"context"
	"errors"
)

// ONNXScorer stub type when built without CGO (see onnx.go for real implementation).
type ONNXScorer struct{}

// NewONNXScorer returns an error when built without CGO (ONNX not available).
func NewONNXScorer(_ string, _ int) (*ONNXScorer, error) {
	return nil, errors.New("ONNX cross-encoder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Score is not implemented without CGO.
func (s *ONNXScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	return nil, errors.New("ONNX cross-encoder not available")
}

// Close is a no-op without CGO.
func (s *ONNXScorer) Close() error { return nil }
