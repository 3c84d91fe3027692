package docstore

import "testing"

func TestPutIsWriteOnce(t *testing.T) {
	s := New()
	s.Put("doc1", Record{Title: "Original Title", RawLength: 10})
	s.Put("doc1", Record{Title: "Overwritten Title", RawLength: 99})

	got, ok := s.Get("doc1")
	if !ok {
		t.Fatal("expected doc1 to be present")
	}
	if got.Title != "Original Title" || got.RawLength != 10 {
		t.Fatalf("Put overwrote an existing record: got %+v", got)
	}
}

func TestContainsReflectsIdempotenceCheck(t *testing.T) {
	s := New()
	if s.Contains("doc1") {
		t.Fatal("empty store should not contain doc1")
	}
	s.Put("doc1", Record{Title: "t"})
	if !s.Contains("doc1") {
		t.Fatal("expected doc1 to be present after Put")
	}
}

func TestSnapshotAndFromSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.Put("doc1", Record{Title: "A", Authors: "X", Categories: "cs.lg", Submitter: "x", RawLength: 5})
	s.Put("doc2", Record{Title: "B", RawLength: 7})

	snap := s.Snapshot()
	restored := FromSnapshot(snap)

	if restored.Size() != 2 {
		t.Fatalf("expected size 2, got %d", restored.Size())
	}
	rec, ok := restored.Get("doc1")
	if !ok || rec.Title != "A" || rec.RawLength != 5 {
		t.Fatalf("restored record mismatch: %+v", rec)
	}
}

func TestGetUnknownDocument(t *testing.T) {
	s := New()
	if _, ok := s.Get("nope"); ok {
		t.Fatal("expected Get of an unknown document to report not found")
	}
}
