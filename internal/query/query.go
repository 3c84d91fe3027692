// Package query implements the query engine's 7-stage pipeline: tokenize,
// synonym group expansion, barrel loading, per-group candidate maps,
// smallest-first conjunction, field-weighted + proximity scoring, and
// pagination. It is grounded on the searcher's parser/executor/ranker/
// merger split — the executor's shortest-list-first intersection survives
// essentially intact (pagination sorts every surviving document and then
// slices the requested page; there is no bounded top-K merge), but the
// teacher's BM25 ranker is replaced outright: this spec's scoring model is
// field weights plus a proximity bonus, not term-frequency/document-length
// normalization, and the two must never be conflated.
package query

import (
	"sort"

	"github.com/arxiv-search/scholarsearch/internal/barrel"
	"github.com/arxiv-search/scholarsearch/internal/docstore"
	"github.com/arxiv-search/scholarsearch/internal/lexicon"
	"github.com/arxiv-search/scholarsearch/internal/semantic"
	"github.com/arxiv-search/scholarsearch/internal/tokenizer"
)

// FieldWeights is the fixed per-field scoring weight table from
// SPEC_FULL.md §6. It is a compile-time constant, never operator-tunable.
var FieldWeights = map[tokenizer.FieldCode]int{
	tokenizer.FieldTitle:      5,
	tokenizer.FieldAbstract:   1,
	tokenizer.FieldCategories: 3,
	tokenizer.FieldAuthors:    1,
	tokenizer.FieldSubmitter:  1,
}

// MaxSpan bounds the proximity bonus window, per SPEC_FULL.md §6.
const MaxSpan = 500

const (
	exactWeight    = 1.0
	synonymWeight  = 0.5
	matchTypeExact = "Exact"
	matchTypeSemi  = "Semantic"
)

// Engine composes the lexicon, barrel set, and (optionally) the semantic
// model to answer search requests against a frozen snapshot of all three.
type Engine struct {
	Lexicon  *lexicon.Lexicon
	Docs     *docstore.Store
	Barrels  *barrel.Set
	Semantic *semantic.Model // nil disables synonym expansion
}

// ResultItem is one search hit enriched with document metadata, matching
// the search() service-surface shape from SPEC_FULL.md §6.
type ResultItem struct {
	DocID      string  `json:"docId"`
	Score      float64 `json:"score"`
	WordCount  int     `json:"wordCount"`
	MatchType  string  `json:"matchType"`
	Title      string  `json:"title"`
	Authors    string  `json:"authors"`
	Categories string  `json:"categories"`
}

// Page is the full search() response shape.
type Page struct {
	Results      []ResultItem `json:"results"`
	Tokens       []string     `json:"tokens"`
	TotalResults int          `json:"totalResults"`
	HasMore      bool         `json:"hasMore"`
	Page         int          `json:"page"`
	Limit        int          `json:"limit"`
}

// group is one query token's disjunctive synonym set, preserving query
// order.
type group struct {
	anchor string // t_i, the query's own term
	words  []string
}

// candidate is one document's contribution to a group's candidate map.
type candidate struct {
	docID   string
	posting barrel.Posting
	isExact bool
}

// Search runs the full 7-stage pipeline. page and limit are both >= 1.
func (e *Engine) Search(queryString string, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	// Stage 1 — tokenize.
	tokens := tokenizer.TokenizeQuery(queryString)
	if len(tokens) == 0 {
		return &Page{Results: []ResultItem{}, Tokens: []string{}, Page: page, Limit: limit}, nil
	}

	// Stage 2 — group expansion.
	groups := make([]group, 0, len(tokens))
	for _, t := range tokens {
		words := []string{t}
		if e.Semantic != nil {
			words = append(words, e.Semantic.FindSynonyms(t)...)
		}
		groups = append(groups, group{anchor: t, words: words})
	}

	// Stage 3 — barrel loading happens lazily inside barrel.Set.Lookup, which
	// caches per-shard results; no separate prefetch pass is required since
	// every lookup in stage 4 goes through the same cache.

	// Stage 4 — per-group candidate maps.
	candidateMaps := make([]map[string]candidate, len(groups))
	for i, g := range groups {
		m := make(map[string]candidate)
		for _, w := range g.words {
			wordID, ok := e.Lexicon.Lookup(w)
			if !ok {
				continue
			}
			postings, err := e.Barrels.Lookup(wordID)
			if err != nil {
				return nil, err
			}
			isExact := w == g.anchor
			for _, p := range postings {
				existing, seen := m[p.DocID]
				if !seen || (isExact && !existing.isExact) {
					m[p.DocID] = candidate{docID: p.DocID, posting: p, isExact: isExact}
				}
			}
		}
		candidateMaps[i] = m
	}

	// Stage 5 — conjunction: sort groups ascending size, fold by intersection.
	order := make([]int, len(candidateMaps))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return len(candidateMaps[order[i]]) < len(candidateMaps[order[j]])
	})

	survivors := make(map[string][]candidate)
	for docID, c := range candidateMaps[order[0]] {
		survivors[docID] = []candidate{c}
	}
	for _, idx := range order[1:] {
		if len(survivors) == 0 {
			break
		}
		m := candidateMaps[idx]
		for docID, chain := range survivors {
			c, ok := m[docID]
			if !ok {
				delete(survivors, docID)
				continue
			}
			survivors[docID] = append(chain, c)
		}
	}

	if len(survivors) == 0 {
		return &Page{Results: []ResultItem{}, Tokens: tokens, Page: page, Limit: limit}, nil
	}

	// Stage 6 — scoring.
	type scored struct {
		docID     string
		total     float64
		matchType string
		wordCount int
	}
	all := make([]scored, 0, len(survivors))
	for docID, chain := range survivors {
		var sumScore float64
		allExact := true
		var positions []int
		for _, c := range chain {
			base := 0.0
			for _, h := range c.posting.Hits {
				base += float64(FieldWeights[h.Field])
				positions = append(positions, int(h.Position))
			}
			weight := synonymWeight
			if c.isExact {
				weight = exactWeight
			} else {
				allExact = false
			}
			sumScore += base * weight
		}
		total := sumScore
		if len(chain) > 1 {
			total += proximityBonus(positions)
		}
		matchType := matchTypeSemi
		if allExact {
			matchType = matchTypeExact
		}
		all = append(all, scored{docID: docID, total: total, matchType: matchType, wordCount: len(chain)})
	}

	// Stage 7 — ordering and pagination.
	sort.Slice(all, func(i, j int) bool {
		if all[i].total != all[j].total {
			return all[i].total > all[j].total
		}
		return all[i].docID < all[j].docID
	})

	totalResults := len(all)
	start := (page - 1) * limit
	end := start + limit
	if start > totalResults {
		start = totalResults
	}
	if end > totalResults {
		end = totalResults
	}

	results := make([]ResultItem, 0, end-start)
	for _, s := range all[start:end] {
		rec, _ := e.Docs.Get(s.docID)
		results = append(results, ResultItem{
			DocID:      s.docID,
			Score:      s.total,
			WordCount:  s.wordCount,
			MatchType:  s.matchType,
			Title:      rec.Title,
			Authors:    rec.Authors,
			Categories: rec.Categories,
		})
	}

	return &Page{
		Results:      results,
		Tokens:       tokens,
		TotalResults: totalResults,
		HasMore:      end < totalResults,
		Page:         page,
		Limit:        limit,
	}, nil
}

// proximityBonus implements SPEC_FULL.md §4.8 Stage 6: collect all hit
// positions, sort, span = max-min, bonus = max(0, MaxSpan-min(span,MaxSpan))/100.
func proximityBonus(positions []int) float64 {
	if len(positions) < 2 {
		return 0
	}
	sort.Ints(positions)
	span := positions[len(positions)-1] - positions[0]
	if span > MaxSpan {
		span = MaxSpan
	}
	bonus := MaxSpan - span
	if bonus < 0 {
		bonus = 0
	}
	return float64(bonus) / 100
}
