// Package semantic loads pretrained GloVe-style word vectors, filtered to
// the current lexicon, and answers nearest-neighbor queries by cosine
// similarity for query-time synonym expansion. The teacher has no
// equivalent subsystem; the Vector shape here is adapted from the pack's
// vector-search examples (ID + float32 embedding), trimmed to this
// package's needs — a token and its embedding, no auxiliary metadata.
package semantic

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultSimilarityThreshold and DefaultMaxSynonyms are SPEC_FULL.md §6
// fixed defaults.
const (
	DefaultSimilarityThreshold = 0.65
	DefaultMaxSynonyms         = 3
)

// Model holds the loaded vector table and answers synonym queries.
type Model struct {
	dim         int
	vectors     map[string][]float32
	tokens      []string // sorted, for deterministic scan order
	threshold   float64
	maxSynonyms int
}

// Load reads a GloVe-format text file of "<token> <f1> ... <fk>" lines,
// keeping only rows whose token is accepted by isKnown (typically the
// lexicon's Lookup). Dimension k is inferred from the first accepted row
// and any later row of a different dimension, or with a value that does not
// parse as a number, is skipped without logging or reporting it, per the
// "local recovery for per-document parse failures" error-handling policy —
// here scoped to per-line failures.
func Load(path string, isKnown func(token string) bool, threshold float64, maxSynonyms int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vectors file: %w", err)
	}
	defer f.Close()

	m := &Model{
		vectors:     make(map[string][]float32),
		threshold:   threshold,
		maxSynonyms: maxSynonyms,
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		token := fields[0]
		if !isKnown(token) {
			continue
		}
		raw := fields[1:]
		if m.dim == 0 {
			m.dim = len(raw)
		} else if len(raw) != m.dim {
			continue
		}
		vec := make([]float32, len(raw))
		bad := false
		for i, s := range raw {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				bad = true
				break
			}
			vec[i] = float32(v)
		}
		if bad {
			continue
		}
		m.vectors[token] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vectors file: %w", err)
	}

	m.tokens = make([]string, 0, len(m.vectors))
	for tok := range m.vectors {
		m.tokens = append(m.tokens, tok)
	}
	sort.Strings(m.tokens)
	return m, nil
}

// Dimension returns the inferred vector width, 0 if nothing was loaded.
func (m *Model) Dimension() int {
	return m.dim
}

// Size returns the number of tokens with a loaded vector.
func (m *Model) Size() int {
	return len(m.vectors)
}

type candidate struct {
	token string
	score float64
}

// FindSynonyms returns up to MaxSynonyms tokens whose vector has cosine
// similarity >= threshold against token's vector, descending by
// similarity, ties broken by lexicographic token order. Returns empty if
// token has no loaded vector.
func (m *Model) FindSynonyms(token string) []string {
	target, ok := m.vectors[token]
	if !ok {
		return nil
	}
	candidates := make([]candidate, 0, len(m.tokens))
	for _, other := range m.tokens {
		if other == token {
			continue
		}
		sim := cosineSimilarity(target, m.vectors[other])
		if sim >= m.threshold {
			candidates = append(candidates, candidate{token: other, score: sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].token < candidates[j].token
	})
	if len(candidates) > m.maxSynonyms {
		candidates = candidates[:m.maxSynonyms]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.token
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
