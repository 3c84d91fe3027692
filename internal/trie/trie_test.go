package trie

import (
	"reflect"
	"testing"
)

func TestAutocompleteReturnsPrefixMatchesSorted(t *testing.T) {
	tr := Build([]string{"neural", "networks", "network", "net", "netting"})
	got := tr.Autocomplete("net", 0)
	want := []string{"net", "netting", "network", "networks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// A token of exactly MinTokenLength ("art") is kept, but a shorter inserted
// token must not surface.
func TestAutocompleteFiltersBelowMinTokenLength(t *testing.T) {
	tr := Build([]string{"ai", "art", "artificial"})
	got := tr.Autocomplete("a", 0)
	for _, tok := range got {
		if len(tok) < MinTokenLength {
			t.Errorf("autocomplete returned token %q shorter than MinTokenLength", tok)
		}
	}
	found := map[string]bool{}
	for _, tok := range got {
		found[tok] = true
	}
	if found["ai"] {
		t.Error("expected \"ai\" (length 2) to be filtered out")
	}
	if !found["art"] || !found["artificial"] {
		t.Errorf("expected art and artificial present, got %v", got)
	}
}

func TestAutocompleteRespectsLimit(t *testing.T) {
	tr := Build([]string{"neural", "networks", "network", "netting"})
	got := tr.Autocomplete("net", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results with limit=2, got %v", got)
	}
}

func TestAutocompleteUnknownPrefix(t *testing.T) {
	tr := Build([]string{"neural"})
	got := tr.Autocomplete("xyz", 0)
	if got != nil {
		t.Fatalf("expected nil for an unknown prefix, got %v", got)
	}
}

// S7: autocomplete assembly — suggesting the last word of a multi-word query
// reattaches the unchanged prefix of the query.
func TestSuggestAssemblesMultiWordQuery(t *testing.T) {
	tr := Build([]string{"network", "networks"})
	got := tr.Suggest("deep neural net", 0)
	want := []string{"deep neural network", "deep neural networks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSuggestSingleWord(t *testing.T) {
	tr := Build([]string{"network", "networks"})
	got := tr.Suggest("net", 0)
	want := []string{"network", "networks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSuggestEmptyPrefixYieldsEmpty(t *testing.T) {
	tr := Build([]string{"network"})
	if got := tr.Suggest("deep neural ", 0); got != nil {
		t.Fatalf("expected nil for a trailing-space query, got %v", got)
	}
	if got := tr.Suggest("", 0); got != nil {
		t.Fatalf("expected nil for an empty query, got %v", got)
	}
}

// Monotonicity: appending a character to a matched prefix never returns a
// superset of the previous result's matches (it can only narrow the set).
func TestAutocompleteMonotonicNarrowing(t *testing.T) {
	tr := Build([]string{"network", "networks", "net", "netting", "neutral"})
	broad := tr.Autocomplete("ne", 0)
	narrow := tr.Autocomplete("net", 0)

	broadSet := map[string]bool{}
	for _, tok := range broad {
		broadSet[tok] = true
	}
	for _, tok := range narrow {
		if !broadSet[tok] {
			t.Fatalf("narrower prefix %q produced %q which was absent from broader prefix results %v", "net", tok, broad)
		}
	}
}
