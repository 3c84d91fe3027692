// Package barrel implements the partitioned inverted index: NUM_BARRELS
// fixed shards, shard(wordID) = wordID mod NUM_BARRELS, each persisted as
// its own file and lazily loaded into an in-memory shard cache. It is
// grounded on the indexing pipeline's segment writer/reader (atomic
// write-temp-then-rename, whole-file dictionary load) generalized from a
// dictionary-plus-offset-table binary format down to one JSON map per
// shard, and on the shard router's id-mod-N routing idea. The shard count
// is passed to NewSet at startup (configuration default 64) and stays the
// same for the Set's lifetime.
package barrel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arxiv-search/scholarsearch/internal/forwardindex"
	"github.com/arxiv-search/scholarsearch/internal/lexicon"
	"github.com/arxiv-search/scholarsearch/internal/store"
)

// Posting is one document's contribution to a word's posting list: its
// docID and the ordered hits it produced for that word, per SPEC_FULL.md
// §3. The hit-list shape is mandatory — a term-frequency-only variant is an
// unused artifact the source sometimes produces and must never appear
// here (see SPEC_FULL.md §9 Open Questions).
type Posting struct {
	DocID string             `json:"docId"`
	Hits  []forwardindex.Hit `json:"hits"`
}

// Shard maps WordID to its posting list, restricted to WordIDs satisfying
// wordID mod NumBarrels == this shard's index.
type Shard map[lexicon.WordID][]Posting

// Set is the barrel set: NumBarrels shards, lazily loaded and cached. It
// never holds file descriptors across requests — each load is a single
// read-whole-file-and-parse, matching SPEC_FULL.md §5's "readers must not
// hold file descriptors across reload" resource policy.
type Set struct {
	mu         sync.RWMutex
	dataDir    string
	numBarrels int
	cache      map[int]Shard
}

// NewSet returns a Set rooted at dataDir with the fixed shard count
// numBarrels. numBarrels must not change after the first build (SPEC_FULL.md
// §3); Set does not itself enforce this since detecting a drift across
// deployments is outside this package's scope.
func NewSet(dataDir string, numBarrels int) *Set {
	return &Set{
		dataDir:    dataDir,
		numBarrels: numBarrels,
		cache:      make(map[int]Shard),
	}
}

// ShardIndex computes which shard a WordID belongs to.
func (s *Set) ShardIndex(id lexicon.WordID) int {
	return int(uint32(id)) % s.numBarrels
}

// NumBarrels returns the fixed shard count.
func (s *Set) NumBarrels() int {
	return s.numBarrels
}

func (s *Set) shardPath(index int) string {
	return filepath.Join(s.dataDir, "barrels", fmt.Sprintf("%d", index))
}

// LoadShard returns shardIndex's contents, loading from disk and caching on
// first access. A missing shard file is treated as an empty shard, never
// an error, per SPEC_FULL.md §4.5.
func (s *Set) LoadShard(shardIndex int) (Shard, error) {
	s.mu.RLock()
	if shard, ok := s.cache[shardIndex]; ok {
		s.mu.RUnlock()
		return shard, nil
	}
	s.mu.RUnlock()

	shard := make(Shard)
	err := store.LoadJSON(s.shardPath(shardIndex), &shard)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading shard %d: %w", shardIndex, err)
	}

	s.mu.Lock()
	s.cache[shardIndex] = shard
	s.mu.Unlock()
	return shard, nil
}

// Lookup loads wordID's shard on demand and returns its posting list,
// empty if the word has no postings in this barrel set.
func (s *Set) Lookup(id lexicon.WordID) ([]Posting, error) {
	shard, err := s.LoadShard(s.ShardIndex(id))
	if err != nil {
		return nil, err
	}
	return shard[id], nil
}

// MergeIntoShard appends newPostings into shardIndex's existing postings
// (insertion order of ingestion is preserved, never re-sorted by docID —
// callers must rely on set membership, not list order, for conjunction)
// and rewrites the shard file atomically. The in-memory cache entry is
// updated in the same call so a subsequent Lookup within this process sees
// the merge without a reload.
func (s *Set) MergeIntoShard(shardIndex int, newPostings map[lexicon.WordID][]Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shard, ok := s.cache[shardIndex]
	if !ok {
		shard = make(Shard)
		err := store.LoadJSON(s.shardPath(shardIndex), &shard)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading shard %d for merge: %w", shardIndex, err)
		}
	}
	for id, postings := range newPostings {
		shard[id] = append(shard[id], postings...)
	}
	if err := store.SaveJSON(s.shardPath(shardIndex), shard); err != nil {
		return fmt.Errorf("writing shard %d: %w", shardIndex, err)
	}
	s.cache[shardIndex] = shard
	return nil
}

// InvalidateShards drops the given shard indices from the cache so the next
// Lookup reloads them from disk.
func (s *Set) InvalidateShards(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range indices {
		delete(s.cache, idx)
	}
}

// CachedShards returns the sorted indices of shards currently resident in
// the cache, used by the Cache Manager's status report.
func (s *Set) CachedShards() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indices := make([]int, 0, len(s.cache))
	for idx := range s.cache {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

