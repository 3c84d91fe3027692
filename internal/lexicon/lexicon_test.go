package lexicon

import "testing"

func TestInternIsIdempotent(t *testing.T) {
	l := New()
	id1 := l.Intern("neural")
	id2 := l.Intern("neural")
	if id1 != id2 {
		t.Fatalf("Intern returned different IDs for the same token: %d vs %d", id1, id2)
	}
	if l.Size() != 1 {
		t.Fatalf("expected size 1 after re-interning the same token, got %d", l.Size())
	}
}

func TestInternAllocatesDenseIncreasingIDs(t *testing.T) {
	l := New()
	a := l.Intern("neural")
	b := l.Intern("networks")
	c := l.Intern("deep")
	if !(a == 1 && b == a+1 && c == b+1) {
		t.Fatalf("expected dense increasing IDs 1, 2, 3, got %d, %d, %d", a, b, c)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	l := New()
	if _, ok := l.Lookup("missing"); ok {
		t.Fatal("expected Lookup of an un-interned token to report not found")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	l := New()
	id := l.Intern("networks")
	token, ok := l.Token(id)
	if !ok || token != "networks" {
		t.Fatalf("Token(%d) = (%q, %v), want (\"networks\", true)", id, token, ok)
	}
}

func TestAllTokensSorted(t *testing.T) {
	l := New()
	for _, tok := range []string{"networks", "deep", "neural", "ai"} {
		l.Intern(tok)
	}
	got := l.AllTokens()
	want := []string{"ai", "deep", "networks", "neural"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFromSnapshotRecomputesNextID(t *testing.T) {
	snap := map[string]WordID{"neural": 3, "networks": 7, "deep": 1}
	l := FromSnapshot(snap)
	if l.Size() != 3 {
		t.Fatalf("expected size 3, got %d", l.Size())
	}
	next := l.Intern("brandnew")
	if next != 8 {
		t.Fatalf("expected next allocation to be max(7)+1=8, got %d", next)
	}
}

func TestWordIDTextMarshalRoundTrip(t *testing.T) {
	id := WordID(42)
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText returned error: %v", err)
	}
	var out WordID
	if err := out.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText returned error: %v", err)
	}
	if out != id {
		t.Fatalf("round trip mismatch: got %d, want %d", out, id)
	}
}
