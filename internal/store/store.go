// Package store is the persistence boundary: a thin JSON-over-files
// key-value surface that every in-memory table (lexicon, document store,
// forward index, barrels) reads from at startup and writes back to after an
// ingest. SPEC_FULL.md explicitly treats storage as an abstract
// persistent key-value surface and names JSON only as the concrete
// interchange — this package is where that choice is isolated. Typed
// integer keys (WordID) reach JSON's string-only map keys through
// lexicon.WordID's own MarshalText/UnmarshalText, which encoding/json calls
// here, per the "typed keys at the persistence boundary" design note.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadJSON reads path and unmarshals it into v. A missing file is reported
// via os.IsNotExist(err) so callers can distinguish "not yet written" from
// a genuine read failure.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// SaveJSON marshals v and writes it to path atomically: the data is written
// to a temp file in the same directory and then renamed over the final
// path, so readers never observe a partially-written file. This mirrors
// the write-temp-then-rename discipline used by the indexing pipeline's
// on-disk segment writer.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file for %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file into %s: %w", path, err)
	}
	return nil
}
