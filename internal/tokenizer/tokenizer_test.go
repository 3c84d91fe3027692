package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenizeFiltersStopWordsAndShortTokens(t *testing.T) {
	tokens, _ := Tokenize("the Neural Networks are on it", FieldTitle, 0)
	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Term)
	}
	want := []string{"neural", "networks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// Invariant 3: every accepted token has length >= MinWordLength and is not
// a stop word.
func TestAcceptedTokensSatisfyInvariant(t *testing.T) {
	text := "an on it will with from all our neural networks deep learning ai"
	tokens, _ := Tokenize(text, FieldAbstract, 0)
	for _, tok := range tokens {
		if len(tok.Term) < MinWordLength {
			t.Errorf("accepted token %q shorter than MinWordLength", tok.Term)
		}
		if _, stop := StopWords[tok.Term]; stop {
			t.Errorf("accepted token %q is a stop word", tok.Term)
		}
	}
}

func TestPositionAdvancesEvenForFilteredWords(t *testing.T) {
	tokens, next := Tokenize("a neural of networks", FieldTitle, 0)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 accepted tokens, got %d", len(tokens))
	}
	if tokens[0].Position != 1 || tokens[1].Position != 3 {
		t.Errorf("expected positions 1 and 3 (filtered words still advance), got %d and %d", tokens[0].Position, tokens[1].Position)
	}
	if next != 4 {
		t.Errorf("expected next position 4, got %d", next)
	}
}

func TestTokenizeDocumentThreadsPositionAcrossFields(t *testing.T) {
	fields := map[FieldCode]string{
		FieldTitle:    "neural networks",
		FieldAbstract: "deep learning",
	}
	toks := TokenizeDocument(fields)
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
	for i, tok := range toks {
		if tok.Position != i {
			t.Errorf("token %d (%q): expected position %d, got %d", i, tok.Term, i, tok.Position)
		}
	}
	if toks[0].Field != FieldTitle || toks[2].Field != FieldAbstract {
		t.Errorf("field assignment mismatch: %+v", toks)
	}
}

func TestTokenizeDocumentSkipsEmptyFields(t *testing.T) {
	fields := map[FieldCode]string{
		FieldTitle:      "neural networks",
		FieldAbstract:   "",
		FieldCategories: "cs.lg",
	}
	toks := TokenizeDocument(fields)
	var terms []string
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	want := []string{"neural", "networks"} // "cs" and "lg" are below MinWordLength
	if !reflect.DeepEqual(terms, want) {
		t.Fatalf("got %v, want %v", terms, want)
	}
}

func TestTokenizeQueryDiscardsPositionAndField(t *testing.T) {
	got := TokenizeQuery("Deep Learning Models")
	want := []string{"deep", "learning", "models"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
