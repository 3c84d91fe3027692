// Package ingest implements the incremental indexer: idempotent ingestion
// of a document batch, isolated from the serving path's reads, followed by
// a tagged Result|Failure report instead of a string-sniffed status field
// (SPEC_FULL.md §9). It is grounded on the indexing pipeline's
// message-handler-over-channel shape, generalized from an external Kafka
// topic consumer to an in-process worker since this module's Non-goals
// rule out cross-process concurrency.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arxiv-search/scholarsearch/internal/barrel"
	"github.com/arxiv-search/scholarsearch/internal/docstore"
	"github.com/arxiv-search/scholarsearch/internal/forwardindex"
	"github.com/arxiv-search/scholarsearch/internal/lexicon"
	"github.com/arxiv-search/scholarsearch/internal/tokenizer"
	"github.com/arxiv-search/scholarsearch/pkg/logger"
)

// RawDocument is one element of the canonical batch input (the "arxiv"
// artifact), per SPEC_FULL.md §6.
type RawDocument struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Abstract   string `json:"abstract"`
	Categories string `json:"categories"`
	Authors    string `json:"authors"`
	Submitter  string `json:"submitter"`
}

// Outcome is the tagged Result|Failure variant posted back to the caller.
// Exactly one of the two is non-nil — no string-sniffing of a status field.
type Outcome struct {
	Result  *Result
	Failure *Failure
}

// Result carries a successful batch's summary.
type Result struct {
	IndexedCount int
	Message      string
}

// Failure carries a failed batch's summary; serving caches are left
// untouched on failure.
type Failure struct {
	Message string
}

// Persister writes L, D, and F to their durable paths. internal/cache.Manager
// implements this; Worker depends only on the method it needs.
type Persister interface {
	Persist(lex *lexicon.Lexicon, docs *docstore.Store, fwd *forwardindex.Index) error
}

// Worker runs batches against its own working copies of L, D, F and the
// barrel set. It performs only synchronous, isolated I/O — admission
// control (single job in flight) lives one layer up, in Queue.
type Worker struct {
	lex       *lexicon.Lexicon
	docs      *docstore.Store
	fwd       *forwardindex.Index
	barrels   *barrel.Set
	persister Persister
	logger    *slog.Logger
}

// NewWorker constructs a Worker bound to the serving process's live L, D, F,
// and barrel set. The worker is the sole writer of these structures
// (SPEC_FULL.md §5's single-writer discipline); it persists L, D, F to disk
// itself (step 6 of §4.9) but the caller is responsible for triggering a
// Cache Manager reload after a successful batch so concurrent readers
// observe the update atomically.
func NewWorker(lex *lexicon.Lexicon, docs *docstore.Store, fwd *forwardindex.Index, barrels *barrel.Set, persister Persister) *Worker {
	return &Worker{
		lex:       lex,
		docs:      docs,
		fwd:       fwd,
		barrels:   barrels,
		persister: persister,
		logger:    logger.WithComponent("incremental-indexer"),
	}
}

// Run executes one batch through the 7-step algorithm in SPEC_FULL.md §4.9
// and returns the tagged Outcome to report back to the submitter.
func (w *Worker) Run(ctx context.Context, batch []RawDocument) Outcome {
	indexed, err := w.runBatch(ctx, batch)
	if err != nil {
		w.logger.Error("ingest batch failed", "error", err)
		return Outcome{Failure: &Failure{Message: err.Error()}}
	}
	msg := fmt.Sprintf("indexed %d new document(s)", indexed)
	w.logger.Info("ingest batch complete", "indexed", indexed)
	return Outcome{Result: &Result{IndexedCount: indexed, Message: msg}}
}

// runBatch implements the 7-step algorithm from SPEC_FULL.md §4.9.
func (w *Worker) runBatch(ctx context.Context, batch []RawDocument) (int, error) {
	// Step 1/2 — idempotence filter against D.
	surviving := make([]RawDocument, 0, len(batch))
	for _, doc := range batch {
		if doc.ID == "" {
			continue // BadInput: elements without IDs are silently dropped.
		}
		if w.docs.Contains(doc.ID) {
			continue // already indexed: idempotence.
		}
		surviving = append(surviving, doc)
	}

	// Step 3/4 — tokenize, intern, build forward entries, group by shard.
	shardBatches := make(map[int]map[lexicon.WordID][]barrel.Posting)
	newRecords := make(map[string]docstore.Record, len(surviving))
	newEntries := make(map[string]forwardindex.Entry, len(surviving))
	indexed := 0

	for _, doc := range surviving {
		select {
		case <-ctx.Done():
			return indexed, ctx.Err()
		default:
		}

		fields := map[tokenizer.FieldCode]string{
			tokenizer.FieldTitle:      doc.Title,
			tokenizer.FieldAbstract:   doc.Abstract,
			tokenizer.FieldCategories: doc.Categories,
			tokenizer.FieldAuthors:    doc.Authors,
			tokenizer.FieldSubmitter:  doc.Submitter,
		}
		toks := tokenizer.TokenizeDocument(fields)

		entry := make(forwardindex.Entry)
		for _, t := range toks {
			wordID := w.lex.Intern(t.Term)
			entry[wordID] = append(entry[wordID], forwardindex.Hit{
				Position: uint32(t.Position),
				Field:    t.Field,
			})
		}
		if len(entry) == 0 {
			// Per-document parse failure policy: log and skip, the rest of
			// the batch still commits (partial-success ingest is allowed).
			w.logger.Warn("document produced no tokens, skipping", "doc_id", doc.ID)
			continue
		}

		for wordID, hits := range entry {
			shardIdx := w.barrels.ShardIndex(wordID)
			if shardBatches[shardIdx] == nil {
				shardBatches[shardIdx] = make(map[lexicon.WordID][]barrel.Posting)
			}
			shardBatches[shardIdx][wordID] = append(shardBatches[shardIdx][wordID], barrel.Posting{
				DocID: doc.ID,
				Hits:  hits,
			})
		}

		newEntries[doc.ID] = entry
		newRecords[doc.ID] = docstore.Record{
			Title:      doc.Title,
			Authors:    doc.Authors,
			Categories: doc.Categories,
			Submitter:  doc.Submitter,
			RawLength:  len(doc.Title) + len(doc.Abstract) + len(doc.Categories) + len(doc.Authors) + len(doc.Submitter),
		}
		indexed++
	}

	if indexed == 0 {
		return 0, nil
	}

	// Step 5 — per touched shard: load, append, write back.
	for shardIdx, postings := range shardBatches {
		if err := w.barrels.MergeIntoShard(shardIdx, postings); err != nil {
			return indexed, fmt.Errorf("merging shard %d: %w", shardIdx, err)
		}
	}

	// Step 6 — commit D and F. L was already updated in-place by Intern.
	for docID, record := range newRecords {
		w.docs.Put(docID, record)
	}
	for docID, entry := range newEntries {
		w.fwd.Put(docID, entry)
	}
	if w.persister != nil {
		if err := w.persister.Persist(w.lex, w.docs, w.fwd); err != nil {
			return indexed, fmt.Errorf("persisting batch: %w", err)
		}
	}

	return indexed, nil
}
