package embedding

import "testing"

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, types := tok.Tokenize("rent an hdb flat", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(mask), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("first token should be CLS, got %d", ids[0])
	}
	if mask[0] != 1 || mask[4] != 1 {
		t.Error("attention mask should cover CLS and words")
	}
	for _, tt := range types {
		if tt != 0 {
			t.Error("single-segment token types should all be 0")
		}
	}
}

func TestSimpleTokenizer_deterministic(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("minimum lease term", 16)
	b, _, _ := tok.Tokenize("minimum lease term", 16)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tokenization not deterministic at %d", i)
		}
	}
}

func TestSimpleTokenizer_TokenizePair(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, types := tok.TokenizePair("query words", "document body text", 16)
	if ids[0] != clsTokenID {
		t.Errorf("first token should be CLS, got %d", ids[0])
	}
	// Expect a SEP after the first segment.
	if ids[3] != sepTokenID {
		t.Errorf("expected SEP at position 3, got %d", ids[3])
	}
	// Second segment carries token type 1.
	if types[4] != 1 || types[5] != 1 {
		t.Errorf("second segment token types should be 1: %v", types)
	}
	if types[1] != 0 {
		t.Error("first segment token types should be 0")
	}
	if mask[4] != 1 {
		t.Error("attention mask should cover second segment")
	}
}

func TestSimpleTokenizer_truncation(t *testing.T) {
	tok := &SimpleTokenizer{}
	long := ""
	for i := 0; i < 100; i++ {
		long += "word "
	}
	ids, _, _ := tok.Tokenize(long, 8)
	if len(ids) != 8 {
		t.Fatalf("len=%d", len(ids))
	}
}
