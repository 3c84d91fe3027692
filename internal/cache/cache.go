// Package cache implements the Cache Manager: the live, queryable snapshot
// of L (lexicon), D (document store), R (autocomplete trie), S (semantic
// model) and the shard cache, with an atomic pointer-swap reload protocol so
// in-flight queries never observe a mixed state (SPEC_FULL.md §4.10, §5).
//
// It is grounded on the query-result cache's Get/Set/Invalidate/Stats
// surface shape, generalized from caching computed query results to caching
// the engine's own snapshots, and on the shard router's whole-table-swap
// idiom (ReloadAll/FlushAll) for the reload protocol itself. The teacher has
// no single-process equivalent of this component — the engine used a
// distributed Kafka/Postgres pipeline rather than an in-process snapshot —
// so it is assembled fresh from those two idioms rather than adapted from
// one file.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/arxiv-search/scholarsearch/internal/barrel"
	"github.com/arxiv-search/scholarsearch/internal/docstore"
	"github.com/arxiv-search/scholarsearch/internal/forwardindex"
	"github.com/arxiv-search/scholarsearch/internal/lexicon"
	"github.com/arxiv-search/scholarsearch/internal/semantic"
	"github.com/arxiv-search/scholarsearch/internal/store"
	"github.com/arxiv-search/scholarsearch/internal/trie"
	ssErrors "github.com/arxiv-search/scholarsearch/pkg/errors"
	"github.com/arxiv-search/scholarsearch/pkg/logger"
)

// snapshot is the immutable bundle Manager swaps atomically on reload.
// Queries in flight hold a reference to one snapshot for their whole
// lifetime, so a concurrent reload can never hand them a mixed L/D/R.
type snapshot struct {
	lex             *lexicon.Lexicon
	docs            *docstore.Store
	fwd             *forwardindex.Index
	trie            *trie.Trie
	semantic        *semantic.Model
	lastInitialized time.Time
}

// Status is the service surface's status() shape, per SPEC_FULL.md §6.
type Status struct {
	Status          string     `json:"status"`
	Trie            bool       `json:"trie"`
	Vocabulary      bool       `json:"vocabulary"`
	CachedBarrels   []int      `json:"cachedBarrels"`
	VocabularySize  int        `json:"vocabularySize"`
	DocStoreLoaded  bool       `json:"docStoreLoaded"`
	LastInitialized *time.Time `json:"lastInitialized,omitempty"`
}

// Manager owns the live snapshot plus the (separately cached, separately
// invalidated) barrel shard cache.
type Manager struct {
	paths               Paths
	semanticPath        string
	similarityThreshold float64
	maxSynonyms         int

	barrels *barrel.Set
	logger  *slog.Logger

	snap atomic.Pointer[snapshot]
}

// Paths locates the Cache Manager's durable L/D files within a data
// directory. Barrel shards manage their own paths internally.
type Paths struct {
	DataDir string
}

func (p Paths) lexiconPath() string      { return p.DataDir + "/lexicon.json" }
func (p Paths) docStorePath() string     { return p.DataDir + "/docstore.json" }
func (p Paths) forwardIndexPath() string { return p.DataDir + "/forwardindex.json" }

// NewManager constructs a Manager. semanticPath may be empty, disabling
// synonym expansion entirely (Engine.Semantic will be nil).
func NewManager(paths Paths, barrels *barrel.Set, semanticPath string, similarityThreshold float64, maxSynonyms int) *Manager {
	return &Manager{
		paths:               paths,
		semanticPath:        semanticPath,
		similarityThreshold: similarityThreshold,
		maxSynonyms:         maxSynonyms,
		barrels:             barrels,
		logger:              logger.WithComponent("cache-manager"),
	}
}

// Initialize performs the first-time load of L and D, builds R from L's
// keys, and loads S filtered to L's vocabulary. It must complete before any
// query is served; queries arriving first are NotInitialized errors.
func (m *Manager) Initialize() error {
	lex, docs, err := m.loadLD()
	if err != nil {
		return err
	}
	fwd, err := m.loadForwardIndex()
	if err != nil {
		return err
	}
	tokens := lex.AllTokens()
	t := trie.Build(tokens)

	var sem *semantic.Model
	if m.semanticPath != "" {
		sem, err = semantic.Load(m.semanticPath, func(tok string) bool {
			_, ok := lex.Lookup(tok)
			return ok
		}, m.similarityThreshold, m.maxSynonyms)
		if err != nil {
			return fmt.Errorf("loading semantic model: %w", err)
		}
	}

	m.snap.Store(&snapshot{
		lex:             lex,
		docs:            docs,
		fwd:             fwd,
		trie:            t,
		semantic:        sem,
		lastInitialized: time.Now(),
	})
	m.logger.Info("cache manager initialized", "vocabulary_size", lex.Size(), "documents", docs.Size())
	return nil
}

// Reload re-reads L and D from persistence and rebuilds R, then swaps in a
// new snapshot atomically. S is not re-read — newly interned words have no
// pretrained vectors to gain from a reload — so the prior snapshot's S
// carries forward unchanged. Called by the parent after a successful
// ingest batch, per SPEC_FULL.md §4.9.
func (m *Manager) Reload() error {
	prev := m.snap.Load()
	if prev == nil {
		return ssErrors.New(ssErrors.ErrNotInitialized, "reload called before initialize")
	}

	lex, docs, err := m.loadLD()
	if err != nil {
		return err
	}
	fwd, err := m.loadForwardIndex()
	if err != nil {
		return err
	}
	t := trie.Build(lex.AllTokens())

	m.snap.Store(&snapshot{
		lex:             lex,
		docs:            docs,
		fwd:             fwd,
		trie:            t,
		semantic:        prev.semantic,
		lastInitialized: time.Now(),
	})
	m.logger.Info("cache manager reloaded", "vocabulary_size", lex.Size(), "documents", docs.Size())
	return nil
}

// InvalidateShards drops the named barrel shards from the shard cache so
// the next lookup against them reloads from disk.
func (m *Manager) InvalidateShards(indices []int) {
	m.barrels.InvalidateShards(indices)
}

// Status reports the Cache Manager's current state for the service
// surface's status() operation.
func (m *Manager) Status() Status {
	snap := m.snap.Load()
	if snap == nil {
		return Status{Status: "not_initialized"}
	}
	cached := m.barrels.CachedShards()
	return Status{
		Status:          "ready",
		Trie:            snap.trie != nil,
		Vocabulary:      snap.lex != nil,
		CachedBarrels:   cached,
		VocabularySize:  snap.lex.Size(),
		DocStoreLoaded:  snap.docs.Size() > 0,
		LastInitialized: &snap.lastInitialized,
	}
}

// Lexicon returns the current snapshot's L, or nil if not initialized.
func (m *Manager) Lexicon() *lexicon.Lexicon {
	if snap := m.snap.Load(); snap != nil {
		return snap.lex
	}
	return nil
}

// Docs returns the current snapshot's D, or nil if not initialized.
func (m *Manager) Docs() *docstore.Store {
	if snap := m.snap.Load(); snap != nil {
		return snap.docs
	}
	return nil
}

// ForwardIndex returns the current snapshot's F, or nil if not initialized.
func (m *Manager) ForwardIndex() *forwardindex.Index {
	if snap := m.snap.Load(); snap != nil {
		return snap.fwd
	}
	return nil
}

// Trie returns the current snapshot's R, or nil if not initialized.
func (m *Manager) Trie() *trie.Trie {
	if snap := m.snap.Load(); snap != nil {
		return snap.trie
	}
	return nil
}

// Semantic returns the current snapshot's S, which may be nil if synonym
// expansion is disabled or not yet initialized.
func (m *Manager) Semantic() *semantic.Model {
	if snap := m.snap.Load(); snap != nil {
		return snap.semantic
	}
	return nil
}

// Barrels returns the shared barrel set backing this Manager.
func (m *Manager) Barrels() *barrel.Set {
	return m.barrels
}

func (m *Manager) loadLD() (*lexicon.Lexicon, *docstore.Store, error) {
	var tokenToID map[string]lexicon.WordID
	if err := store.LoadJSON(m.paths.lexiconPath(), &tokenToID); err != nil {
		if !isNotExist(err) {
			return nil, nil, fmt.Errorf("loading lexicon: %w", err)
		}
		tokenToID = map[string]lexicon.WordID{}
	}
	lex := lexicon.FromSnapshot(tokenToID)

	var records map[string]docstore.Record
	if err := store.LoadJSON(m.paths.docStorePath(), &records); err != nil {
		if !isNotExist(err) {
			return nil, nil, fmt.Errorf("loading document store: %w", err)
		}
		records = map[string]docstore.Record{}
	}
	docs := docstore.FromSnapshot(records)

	return lex, docs, nil
}

func (m *Manager) loadForwardIndex() (*forwardindex.Index, error) {
	var entries map[string]forwardindex.Entry
	if err := store.LoadJSON(m.paths.forwardIndexPath(), &entries); err != nil {
		if !isNotExist(err) {
			return nil, fmt.Errorf("loading forward index: %w", err)
		}
		entries = map[string]forwardindex.Entry{}
	}
	return forwardindex.FromSnapshot(entries), nil
}

// Persist writes L, D, and F to their durable paths. The incremental
// indexer calls this after updating the in-memory structures (step 6 of
// SPEC_FULL.md §4.9), before the parent is told the batch succeeded.
func (m *Manager) Persist(lex *lexicon.Lexicon, docs *docstore.Store, fwd *forwardindex.Index) error {
	if err := store.SaveJSON(m.paths.lexiconPath(), lex.Snapshot()); err != nil {
		return fmt.Errorf("writing lexicon: %w", err)
	}
	if err := store.SaveJSON(m.paths.docStorePath(), docs.Snapshot()); err != nil {
		return fmt.Errorf("writing document store: %w", err)
	}
	if err := store.SaveJSON(m.paths.forwardIndexPath(), fwd.Snapshot()); err != nil {
		return fmt.Errorf("writing forward index: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}
