// Package forwardindex holds each document's own map of WordID -> hit list.
// It is the input to barrel (re)builds and, per SPEC_FULL.md §4.4, a hook
// for features beyond the core query path (not required by search itself).
package forwardindex

import (
	"sync"

	"github.com/arxiv-search/scholarsearch/internal/lexicon"
	"github.com/arxiv-search/scholarsearch/internal/tokenizer"
)

// Hit is a single occurrence of a WordID at a position in a field, per
// SPEC_FULL.md §3.
type Hit struct {
	Position uint32
	Field    tokenizer.FieldCode
}

// Entry is one document's forward index: WordID -> its ordered hits.
type Entry map[lexicon.WordID][]Hit

// Index is a concurrency-safe docID -> Entry map, written once per document.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// FromSnapshot rebuilds an Index from a persisted docID->Entry mapping.
func FromSnapshot(entries map[string]Entry) *Index {
	idx := New()
	for id, e := range entries {
		idx.entries[id] = e
	}
	return idx
}

// Put records a document's forward-index entry. Non-empty per invariant:
// callers must not call Put with an empty Entry for an indexed document.
func (idx *Index) Put(docID string, entry Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[docID] = entry
}

// Get returns a document's forward-index entry, or (nil, false) if absent.
func (idx *Index) Get(docID string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[docID]
	return e, ok
}

// Snapshot returns a copy of the docID->Entry mapping suitable for
// persistence.
func (idx *Index) Snapshot() map[string]Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string]Entry, len(idx.entries))
	for id, e := range idx.entries {
		out[id] = e
	}
	return out
}

