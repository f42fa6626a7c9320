package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dunn/stacks/internal/catalog"
)

func TestWriteReadJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	want := []catalog.Book{
		{ID: 1, Title: "The Dragon Keep", Author: "Ana Reyes", Genres: []string{"fantasy"}},
		{ID: 2, Title: "Orbital Decay", Author: "Chen Wu"},
	}

	if err := WriteJSONL(path, want); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	got, err := ReadJSONL[catalog.Book](path)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Title != want[i].Title {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadJSONLMissingFile(t *testing.T) {
	got, err := ReadJSONL[catalog.Book](filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("ReadJSONL on missing file: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for missing file", got)
	}
}

func TestReadJSONLSkipsEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	data := `{"id": 1, "title": "A"}

{"id": 2, "title": "B"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := ReadJSONL[catalog.Book](path)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want 2 (blank line skipped)", len(got))
	}
}

func TestReadJSONLMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\": 1}\nnot json\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := ReadJSONL[catalog.Book](path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestWriteJSONLLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.jsonl")
	if err := WriteJSONL(path, []catalog.Book{{ID: 1, Title: "A"}}); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
