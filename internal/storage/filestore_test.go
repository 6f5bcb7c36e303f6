package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sarkari/portal/internal/record"
)

func TestFileBackend(t *testing.T) {
	t.Run("missing files read as empty", func(t *testing.T) {
		b, err := NewFileBackend(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileBackend failed: %v", err)
		}
		doc, err := b.LoadDocument(t.Context())
		if err != nil {
			t.Fatalf("LoadDocument failed: %v", err)
		}
		if len(doc.Rows(record.Job)) != 0 {
			t.Error("expected empty document")
		}
		tbl, err := b.LoadCoaching(t.Context())
		if err != nil {
			t.Fatalf("LoadCoaching failed: %v", err)
		}
		if tbl.Len() != 0 {
			t.Error("expected empty coaching table")
		}
	})

	t.Run("corrupt document is an error", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DocumentFile), []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		b, _ := NewFileBackend(dir)
		if _, err := b.LoadDocument(t.Context()); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()
		b, _ := NewFileBackend(dir)
		doc := record.NewDocument()
		doc.Insert(record.Job, record.Record{"id": "jobs_1", "title": "SSC CGL"}, true)
		if err := b.SaveDocument(t.Context(), doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, DocumentFile))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "\n  \"jobs\"") {
			t.Errorf("document not indented:\n%s", data)
		}
		got, err := b.LoadDocument(t.Context())
		if err != nil {
			t.Fatalf("LoadDocument failed: %v", err)
		}
		if _, r := got.Find(record.Job, "jobs_1"); r.Title() != "SSC CGL" {
			t.Errorf("record lost: %v", got.Rows(record.Job))
		}
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temporary file left behind: %s", e.Name())
			}
		}
	})

	t.Run("seed from yaml", func(t *testing.T) {
		dir := t.TempDir()
		seed := "UPSC Civil Services:\n  - name: Vision IAS\n    url: https://visionias.in\nSSC CGL:\n  - name: Adda247\n    url: https://adda247.com\n"
		if err := os.WriteFile(filepath.Join(dir, CoachingSeedFile), []byte(seed), 0o600); err != nil {
			t.Fatal(err)
		}
		b, _ := NewFileBackend(dir)
		tbl, err := b.LoadCoaching(t.Context())
		if err != nil {
			t.Fatalf("LoadCoaching failed: %v", err)
		}
		entries := tbl.Entries()
		if len(entries) != 2 || entries[0].Title != "UPSC Civil Services" || entries[1].Institutes[0].Name != "Adda247" {
			t.Errorf("unexpected seed: %+v", entries)
		}

		// Once the JSON file exists the seed is ignored.
		if err := b.SaveCoaching(t.Context(), record.NewCoachingTable()); err != nil {
			t.Fatal(err)
		}
		tbl, err = b.LoadCoaching(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if tbl.Len() != 0 {
			t.Errorf("seed applied over existing file: %d entries", tbl.Len())
		}
	})

	t.Run("bad seed", func(t *testing.T) {
		if _, err := ParseCoachingSeed([]byte("- a\n- b\n")); err == nil {
			t.Error("expected error for sequence seed")
		}
	})
}
