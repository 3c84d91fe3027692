package semantic

import (
	"os"
	"path/filepath"
	"testing"
)

func writeVectorsFile(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture vectors file: %v", err)
	}
	return path
}

func allKnown(string) bool { return true }

func TestLoadInfersDimensionAndFiltersUnknownTokens(t *testing.T) {
	path := writeVectorsFile(t, []string{
		"neural 1.0 0.0",
		"excluded 0.5 0.5",
		"networks 0.9 0.1",
	})
	known := map[string]bool{"neural": true, "networks": true}
	m, err := Load(path, func(tok string) bool { return known[tok] }, DefaultSimilarityThreshold, DefaultMaxSynonyms)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Dimension() != 2 {
		t.Fatalf("expected dimension 2, got %d", m.Dimension())
	}
	if m.Size() != 2 {
		t.Fatalf("expected size 2 (excluded token dropped), got %d", m.Size())
	}
}

func TestLoadSkipsRowsOfMismatchedDimension(t *testing.T) {
	path := writeVectorsFile(t, []string{
		"neural 1.0 0.0",
		"malformed 1.0 0.0 0.0",
		"networks 0.9 0.1",
	})
	m, err := Load(path, allKnown, DefaultSimilarityThreshold, DefaultMaxSynonyms)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Size() != 2 {
		t.Fatalf("expected the mismatched-dimension row to be dropped, got size %d", m.Size())
	}
}

func TestFindSynonymsAboveThreshold(t *testing.T) {
	path := writeVectorsFile(t, []string{
		"neural 1.0 0.0",
		"networks 0.9 0.1",
		"deep 0.0 1.0",
		"learning 0.1 0.9",
	})
	m, err := Load(path, allKnown, 0.65, 3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := m.FindSynonyms("neural")
	if len(got) != 1 || got[0] != "networks" {
		t.Fatalf("FindSynonyms(neural) = %v, want [networks]", got)
	}

	got = m.FindSynonyms("deep")
	if len(got) != 1 || got[0] != "learning" {
		t.Fatalf("FindSynonyms(deep) = %v, want [learning]", got)
	}
}

func TestFindSynonymsRespectsMaxSynonyms(t *testing.T) {
	path := writeVectorsFile(t, []string{
		"neural 1.0 0.0",
		"networks 0.99 0.01",
		"network 0.98 0.02",
		"nets 0.97 0.03",
		"nn 0.96 0.04",
	})
	m, err := Load(path, allKnown, 0.5, 2)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := m.FindSynonyms("neural")
	if len(got) != 2 {
		t.Fatalf("expected MaxSynonyms=2 to cap results, got %v", got)
	}
}

func TestFindSynonymsUnknownToken(t *testing.T) {
	path := writeVectorsFile(t, []string{"neural 1.0 0.0"})
	m, err := Load(path, allKnown, DefaultSimilarityThreshold, DefaultMaxSynonyms)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.FindSynonyms("missing"); got != nil {
		t.Fatalf("expected nil for a token with no loaded vector, got %v", got)
	}
}
