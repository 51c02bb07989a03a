package embedding

import "strings"

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
	TokenizePair(first, second string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs (for testing or fallback).
type SimpleTokenizer struct{}

const (
	clsTokenID = 101 // [CLS]
	sepTokenID = 102 // [SEP]
)

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := appendWords(inputIDs, attentionMask, 1, SplitWords(text))
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// TokenizePair encodes "[CLS] first [SEP] second [SEP]" for cross-encoder
// models, with token_type_ids marking the second segment.
func (t *SimpleTokenizer) TokenizePair(first, second string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := appendWords(inputIDs, attentionMask, 1, SplitWords(first))
	if pos < maxTokens-1 {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
		pos++
	}
	segStart := pos
	pos = appendWords(inputIDs, attentionMask, pos, SplitWords(second))
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
		pos++
	}
	for i := segStart; i < pos; i++ {
		tokenTypeIDs[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// appendWords writes hashed word IDs starting at pos, reserving the final slot
// for a separator, and returns the next free position.
func appendWords(inputIDs, attentionMask []int64, pos int, words []string) int {
	for _, word := range words {
		if pos >= len(inputIDs)-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % 30000)
		attentionMask[pos] = 1
		pos++
	}
	return pos
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	return strings.Fields(text)
}

// HashString returns a deterministic hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
