package vector

import "testing"

func TestHandle_ReplaceAndGet(t *testing.T) {
	h := NewHandle(nil)
	if _, ok := h.Get(); ok {
		t.Error("empty handle should report no index")
	}
	idx, _ := NewIndex(4)
	h.Replace(idx)
	got, ok := h.Get()
	if !ok || got != idx {
		t.Error("handle should return the replaced index")
	}
	h.Replace(nil)
	if _, ok := h.Get(); ok {
		t.Error("replacing with nil marks the index absent")
	}
}
