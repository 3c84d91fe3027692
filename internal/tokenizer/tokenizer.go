// Package tokenizer provides deterministic text -> token-stream conversion
// shared by the indexing pipeline and the query engine. It lower-cases
// input, extracts maximal runs of ASCII letters, and filters stop-words and
// short tokens. Unlike a general-purpose analyzer it never stems: the
// corpus's scoring and synonym-expansion stages both assume the surface
// form of a word is the form stored in the lexicon.
package tokenizer

import (
	"strings"
)

// FieldCode identifies which canonical document field a Hit occurred in.
type FieldCode uint8

const (
	FieldTitle      FieldCode = 1
	FieldAbstract   FieldCode = 2
	FieldCategories FieldCode = 3
	FieldAuthors    FieldCode = 4
	FieldSubmitter  FieldCode = 5
)

// CanonicalFields lists the fields in the position-counting order mandated
// by SPEC_FULL.md §3.
var CanonicalFields = []FieldCode{
	FieldTitle, FieldAbstract, FieldCategories, FieldAuthors, FieldSubmitter,
}

// MinWordLength is the minimum accepted token length (indexing side).
const MinWordLength = 3

// StopWords is the fixed stop-word set from SPEC_FULL.md §6. Tokens in this
// set are filtered but still advance the position counter.
var StopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "such": {}, "that": {},
	"the": {}, "their": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "will": {}, "with": {}, "from": {},
	"which": {}, "can": {}, "we": {}, "i": {}, "my": {}, "your": {}, "its": {},
	"all": {}, "our": {},
}

// Token is a single accepted term and the position it occupies in its
// document, plus the field it was found in.
type Token struct {
	Term     string
	Position int
	Field    FieldCode
}

// Tokenize extracts tokens from a single field's text, starting the
// position counter at startPos. It returns the accepted tokens (tagged with
// field) and the position the caller should resume at for the next field,
// since the position counter runs continuously across a document's
// canonical field order and must never reset mid-document.
//
// Every run of letters encountered — accepted or filtered — advances the
// returned position by one; only accepted tokens appear in the result.
func Tokenize(text string, field FieldCode, startPos int) ([]Token, int) {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	tokens := make([]Token, 0, len(words))
	pos := startPos
	for _, word := range words {
		if accept(word) {
			tokens = append(tokens, Token{Term: word, Position: pos, Field: field})
		}
		pos++
	}
	return tokens, pos
}

// TokenizeQuery applies the same tokenization rule to a query string,
// discarding position/field since a query has neither — only the ordered
// list of accepted terms matters to the query engine.
func TokenizeQuery(text string) []string {
	tokens, _ := Tokenize(text, 0, 0)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// TokenizeDocument applies Tokenize across every canonical field in order,
// threading the position counter between them, and returns the flattened
// token stream for the whole document.
func TokenizeDocument(fields map[FieldCode]string) []Token {
	var all []Token
	pos := 0
	for _, field := range CanonicalFields {
		text := fields[field]
		if text == "" {
			continue
		}
		var toks []Token
		toks, pos = Tokenize(text, field, pos)
		all = append(all, toks...)
	}
	return all
}

func accept(word string) bool {
	if len(word) < MinWordLength {
		return false
	}
	_, stop := StopWords[word]
	return !stop
}
