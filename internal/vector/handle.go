package vector

import "sync"

// Handle holds the currently served index behind a read-write lock so queries
// never observe a torn index while ingestion or the watcher replaces it.
type Handle struct {
	mu  sync.RWMutex
	idx *Index
}

// NewHandle creates a handle; idx may be nil when no index exists yet.
func NewHandle(idx *Index) *Handle {
	return &Handle{idx: idx}
}

// Get returns the current index and whether one is loaded.
func (h *Handle) Get() (*Index, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx, h.idx != nil
}

// Replace swaps in a new index (or nil to mark the index absent).
func (h *Handle) Replace(idx *Index) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.idx = idx
}
